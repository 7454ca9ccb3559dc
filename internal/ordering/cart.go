package ordering

import "storefront/internal/models"

// AddToCart puts one more of item into cart. The returned cart shares no
// line storage with the input.
func AddToCart(cart models.Cart, item models.MenuItem) (models.Cart, error) {
	if !item.Available {
		return cart, &UnavailableError{MenuItemID: item.ID, Name: item.Name}
	}

	lines := copyLines(cart.Lines)
	for i := range lines {
		if lines[i].MenuItemID == item.ID {
			lines[i].Quantity++
			cart.Lines = lines
			return cart, nil
		}
	}

	cart.Lines = append(lines, models.CartLine{
		MenuItemID: item.ID,
		Name:       item.Name,
		Price:      item.Price,
		Quantity:   1,
	})
	return cart, nil
}

// UpdateQuantity changes the quantity of line id by delta. A line whose
// quantity would drop to zero or below is removed.
func UpdateQuantity(cart models.Cart, id string, delta int) models.Cart {
	lines := make([]models.CartLine, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		if line.MenuItemID == id {
			line.Quantity += delta
			if line.Quantity <= 0 {
				continue
			}
		}
		lines = append(lines, line)
	}
	cart.Lines = lines
	return cart
}

// RemoveLine drops line id regardless of its quantity.
func RemoveLine(cart models.Cart, id string) models.Cart {
	lines := make([]models.CartLine, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		if line.MenuItemID != id {
			lines = append(lines, line)
		}
	}
	cart.Lines = lines
	return cart
}

func CartTotal(cart models.Cart) models.Money {
	total := models.ZeroMoney
	for _, line := range cart.Lines {
		total = total.Add(line.LineTotal())
	}
	return total
}

func copyLines(lines []models.CartLine) []models.CartLine {
	out := make([]models.CartLine, len(lines), len(lines)+1)
	copy(out, lines)
	return out
}
