package pos

import "sort"

// CartProduct es la foto local de un producto al momento de agregarlo:
// precio unitario y stock conocido en la sucursal. El stock puede quedar
// desactualizado entre armar el carrito y cobrar; el cobro revalida
// contra la base de datos.
type CartProduct struct {
	ID    uint
	Name  string
	Price int64
	Stock int
}

type CartLine struct {
	Product  CartProduct
	Quantity int
}

// Cart acumula las líneas de una venta en curso, una por producto.
// Efímero: vive solo mientras se arma la venta y se descarta al cobrar
// o cancelar. No es seguro para uso concurrente; SessionStore serializa
// el acceso por trabajador.
type Cart struct {
	lines map[uint]*CartLine
}

func NewCart() *Cart {
	return &Cart{lines: make(map[uint]*CartLine)}
}

// Add suma qty al producto, creando la línea si no existe. Rechaza la
// operación completa si la cantidad resultante supera el stock conocido.
func (c *Cart) Add(p CartProduct, qty int) error {
	if qty < 1 {
		return ErrValidation
	}

	current := 0
	if line, ok := c.lines[p.ID]; ok {
		current = line.Quantity
	}

	if current+qty > p.Stock {
		return &InsufficientStockError{
			ProductID: p.ID,
			Name:      p.Name,
			Available: p.Stock,
			Requested: current + qty,
		}
	}

	if line, ok := c.lines[p.ID]; ok {
		line.Quantity += qty
		line.Product = p // refresca precio y stock conocidos
	} else {
		c.lines[p.ID] = &CartLine{Product: p, Quantity: qty}
	}
	return nil
}

// SetQuantity fija la cantidad de una línea existente. qty <= 0 elimina
// la línea.
func (c *Cart) SetQuantity(productID uint, qty int) error {
	line, ok := c.lines[productID]
	if !ok {
		return ErrValidation
	}

	if qty <= 0 {
		delete(c.lines, productID)
		return nil
	}

	if qty > line.Product.Stock {
		return &InsufficientStockError{
			ProductID: line.Product.ID,
			Name:      line.Product.Name,
			Available: line.Product.Stock,
			Requested: qty,
		}
	}

	line.Quantity = qty
	return nil
}

func (c *Cart) Remove(productID uint) {
	delete(c.lines, productID)
}

func (c *Cart) Clear() {
	c.lines = make(map[uint]*CartLine)
}

func (c *Cart) Empty() bool {
	return len(c.lines) == 0
}

// Lines devuelve las líneas ordenadas por id de producto, para que los
// escritores recorran el stock siempre en el mismo orden.
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, 0, len(c.lines))
	for _, line := range c.lines {
		out = append(out, *line)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Product.ID < out[j].Product.ID })
	return out
}

func (c *Cart) TotalItems() int {
	total := 0
	for _, line := range c.lines {
		total += line.Quantity
	}
	return total
}

func (c *Cart) TotalPrice() int64 {
	var total int64
	for _, line := range c.lines {
		total += line.Product.Price * int64(line.Quantity)
	}
	return total
}
