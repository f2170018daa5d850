package model

// MaxLineQuantity bounds a single add-to-cart request. The binding tag on
// the request type repeats it.
const MaxLineQuantity = 99

// CartLine is one row of a cart. Name, ImageURL and Price are copied from
// the item when the line is created and are not refreshed afterwards.
type CartLine struct {
	Product  uint    `json:"product"`
	Name     string  `json:"name"`
	ImageURL string  `json:"imageUrl"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Cart is an ordered list of lines holding at most one line per product.
type Cart []CartLine

// NewCartLine snapshots the item's display fields into a line.
func NewCartLine(item *Item, quantity int) CartLine {
	return CartLine{
		Product:  item.ID,
		Name:     item.Name,
		ImageURL: item.ImageURL,
		Price:    item.Price,
		Quantity: quantity,
	}
}

// Find returns the index of the line for productID, or -1.
func (c Cart) Find(productID uint) int {
	for i, line := range c {
		if line.Product == productID {
			return i
		}
	}
	return -1
}

// Add merges line into the cart: an existing line for the same product has
// its quantity increased, otherwise line is appended. The receiver is not
// modified.
func (c Cart) Add(line CartLine) Cart {
	out := make(Cart, len(c), len(c)+1)
	copy(out, c)
	if i := out.Find(line.Product); i >= 0 {
		out[i].Quantity += line.Quantity
		return out
	}
	return append(out, line)
}

// Remove drops every line referencing productID. Removing an absent product
// returns an equal cart.
func (c Cart) Remove(productID uint) Cart {
	out := make(Cart, 0, len(c))
	for _, line := range c {
		if line.Product != productID {
			out = append(out, line)
		}
	}
	return out
}

// Subtotal is the sum of price times quantity over all lines.
func (c Cart) Subtotal() float64 {
	var total float64
	for _, line := range c {
		total += line.Price * float64(line.Quantity)
	}
	return total
}

// TotalQuantity is the number of units across all lines.
func (c Cart) TotalQuantity() int {
	n := 0
	for _, line := range c {
		n += line.Quantity
	}
	return n
}
