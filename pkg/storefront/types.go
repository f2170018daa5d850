package storefront

// Item is a catalog entry as served by the API.
type Item struct {
	ID           uint    `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
	Category     string  `json:"category"`
	ImageURL     string  `json:"imageUrl"`
	CountInStock int     `json:"countInStock"`
}

// CartLine carries a snapshot of the item taken when it was first added.
type CartLine struct {
	Product  uint    `json:"product"`
	Name     string  `json:"name"`
	ImageURL string  `json:"imageUrl"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// MaxLineQuantity is the most the API accepts in a single add-to-cart
// request. A line may grow past it through repeated adds.
const MaxLineQuantity = 99

// Cart holds at most one line per product, in insertion order.
type Cart []CartLine

// UserInfo is what register and login return.
type UserInfo struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Cart  Cart   `json:"cart"`
	Token string `json:"token"`
}

// ItemFilter narrows ListItems. Zero values apply no predicate.
type ItemFilter struct {
	Category string
	MinPrice *float64
	MaxPrice *float64
}

func lineFromItem(item Item, quantity int) CartLine {
	return CartLine{
		Product:  item.ID,
		Name:     item.Name,
		ImageURL: item.ImageURL,
		Price:    item.Price,
		Quantity: quantity,
	}
}

func (c Cart) clone() Cart {
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

// Add increments the quantity of an existing line for the same product or
// appends line. The receiver is left untouched.
func (c Cart) Add(line CartLine) Cart {
	out := c.clone()
	for i := range out {
		if out[i].Product == line.Product {
			out[i].Quantity += line.Quantity
			return out
		}
	}
	return append(out, line)
}

// Remove drops every line for productID.
func (c Cart) Remove(productID uint) Cart {
	out := make(Cart, 0, len(c))
	for _, line := range c {
		if line.Product != productID {
			out = append(out, line)
		}
	}
	return out
}

func (c Cart) Subtotal() float64 {
	var total float64
	for _, line := range c {
		total += line.Price * float64(line.Quantity)
	}
	return total
}

func (c Cart) TotalQuantity() int {
	n := 0
	for _, line := range c {
		n += line.Quantity
	}
	return n
}
