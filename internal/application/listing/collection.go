// Package listing caché de una colección por página y la máquina de estados que la gobierna.
// La colección solo cambia cuando el backend confirma una escritura.
package listing

// Collection caché de una colección indexada por identificador. No es segura entre goroutines:
// su único dueño es el Controller que la contiene.
type Collection[K comparable, T any] struct {
	key   func(T) K
	items []T
}

// NewCollection crea una colección vacía con la función de identidad dada.
func NewCollection[K comparable, T any](key func(T) K) *Collection[K, T] {
	return &Collection[K, T]{key: key}
}

// Replace sustituye toda la colección (resultado de un listado).
func (c *Collection[K, T]) Replace(items []T) {
	c.items = append(make([]T, 0, len(items)), items...)
}

// Upsert reemplaza el elemento con la misma clave o lo agrega al final.
func (c *Collection[K, T]) Upsert(item T) {
	if !c.ReplaceByKey(c.key(item), item) {
		c.items = append(c.items, item)
	}
}

// ReplaceByKey reemplaza en su posición el elemento con clave k. false si no existe.
func (c *Collection[K, T]) ReplaceByKey(k K, item T) bool {
	if i := c.index(k); i >= 0 {
		c.items[i] = item
		return true
	}
	return false
}

// RemoveByKey elimina exactamente un elemento con clave k.
func (c *Collection[K, T]) RemoveByKey(k K) bool {
	i := c.index(k)
	if i < 0 {
		return false
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	return true
}

// Find busca por clave.
func (c *Collection[K, T]) Find(k K) (T, bool) {
	if i := c.index(k); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// Items copia de los elementos en orden.
func (c *Collection[K, T]) Items() []T {
	return append(make([]T, 0, len(c.items)), c.items...)
}

// Len número de elementos.
func (c *Collection[K, T]) Len() int { return len(c.items) }

// Clear vacía la colección.
func (c *Collection[K, T]) Clear() { c.items = nil }

func (c *Collection[K, T]) index(k K) int {
	for i, it := range c.items {
		if c.key(it) == k {
			return i
		}
	}
	return -1
}
