package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ikkim/storefront-backend/pkg/storefront"
)

const help = `commands:
  items [category]                 list the catalog
  add <id> [qty]                   add an item to the cart
  remove <id>                      remove an item from the cart
  cart                             show the cart
  register <name> <email> <pass>   create an account and log in
  login <email> <pass>             log in
  logout                           log out
  clear [server]                   empty the local cart, and the account cart with "server"
  whoami                           show the session user
  quit                             exit`

var errQuit = errors.New("quit")

type shell struct {
	client *storefront.Client
	store  *storefront.Store
	out    io.Writer
}

func newShell(client *storefront.Client, store *storefront.Store, out io.Writer) *shell {
	return &shell{client: client, store: store, out: out}
}

func (s *shell) run(ctx context.Context, in io.Reader) error {
	fmt.Fprintln(s.out, help)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}

		err := s.exec(ctx, scanner.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
	}
}

func (s *shell) exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "items":
		var filter storefront.ItemFilter
		if len(args) > 0 {
			filter.Category = strings.Join(args, " ")
		}
		items, err := s.client.ListItems(ctx, filter)
		if err != nil {
			return err
		}
		for _, item := range items {
			fmt.Fprintf(s.out, "%4d  %-30s %-12s %8.2f  stock %d\n",
				item.ID, item.Name, item.Category, item.Price, item.CountInStock)
		}
		return nil

	case "add":
		if len(args) < 1 {
			return errors.New("usage: add <id> [qty]")
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		qty := 1
		if len(args) > 1 {
			if qty, err = strconv.Atoi(args[1]); err != nil || qty < 1 || qty > storefront.MaxLineQuantity {
				return fmt.Errorf("invalid quantity %q, must be between 1 and %d", args[1], storefront.MaxLineQuantity)
			}
		}
		item, err := s.client.GetItem(ctx, id)
		if err != nil {
			return err
		}
		err = s.store.AddToCart(ctx, *item, qty)
		s.printCart()
		return err

	case "remove":
		if len(args) != 1 {
			return errors.New("usage: remove <id>")
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		err = s.store.RemoveFromCart(ctx, id)
		s.printCart()
		return err

	case "cart":
		s.printCart()
		return nil

	case "register":
		if len(args) != 3 {
			return errors.New("usage: register <name> <email> <pass>")
		}
		if err := s.store.Register(ctx, args[0], args[1], args[2]); err != nil {
			return err
		}
		s.printUser()
		return nil

	case "login":
		if len(args) != 2 {
			return errors.New("usage: login <email> <pass>")
		}
		if err := s.store.Login(ctx, args[0], args[1]); err != nil {
			return err
		}
		s.printUser()
		return nil

	case "logout":
		err := s.store.Logout(ctx)
		fmt.Fprintln(s.out, "logged out")
		s.printCart()
		return err

	case "clear":
		if len(args) > 0 && args[0] == "server" {
			if !s.store.IsAuthenticated() {
				return errors.New("log in to clear the account cart")
			}
			if _, err := s.client.ClearServerCart(ctx); err != nil {
				return err
			}
		}
		err := s.store.ClearCart(ctx)
		s.printCart()
		return err

	case "whoami":
		s.printUser()
		return nil

	case "help":
		fmt.Fprintln(s.out, help)
		return nil

	case "quit", "exit":
		return errQuit
	}

	return fmt.Errorf("unknown command %q, try help", cmd)
}

func (s *shell) printUser() {
	user := s.store.User()
	if user == nil {
		fmt.Fprintln(s.out, "guest")
		return
	}
	fmt.Fprintf(s.out, "%s <%s>\n", user.Name, user.Email)
}

func (s *shell) printCart() {
	cart := s.store.Cart()
	if len(cart) == 0 {
		fmt.Fprintln(s.out, "cart is empty")
		return
	}
	for _, line := range cart {
		fmt.Fprintf(s.out, "%4d  %-30s %3d x %8.2f\n", line.Product, line.Name, line.Quantity, line.Price)
	}
	fmt.Fprintf(s.out, "items: %d  subtotal: %.2f\n", s.store.TotalQuantity(), s.store.Subtotal())
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid item id %q", raw)
	}
	return uint(id), nil
}
