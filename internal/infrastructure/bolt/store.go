// Package bolt almacenamiento durable de las sesiones de consola sobre bbolt.
// Cada sesión es un bucket (namespace) con claves fijas, p. ej. "user" y "tokens".
package bolt

import (
	"errors"
	"fmt"
	"time"

	bbolt "go.etcd.io/bbolt"
)

// ErrNotFound la clave o el namespace no existen.
var ErrNotFound = errors.New("bolt: no encontrado")

// Store envoltorio sobre *bbolt.DB.
type Store struct {
	db *bbolt.DB
}

// Open abre (o crea) el archivo de base de datos.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("abrir bolt %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close cierra la base de datos.
func (s *Store) Close() error { return s.db.Close() }

// Put escribe value en ns/key, creando el namespace si no existe.
func (s *Store) Put(ns, key string, value []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(ns))
		if err != nil {
			return err
		}
		return b.Put([]byte(key), value)
	})
}

// PutAll escribe varias claves en una sola transacción.
func (s *Store) PutAll(ns string, values map[string][]byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(ns))
		if err != nil {
			return err
		}
		for k, v := range values {
			if err := b.Put([]byte(k), v); err != nil {
				return err
			}
		}
		return nil
	})
}

// Get devuelve una copia del valor; ErrNotFound si no existe.
func (s *Store) Get(ns, key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(ns))
		if b == nil {
			return ErrNotFound
		}
		v := b.Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		out = append([]byte(nil), v...)
		return nil
	})
	return out, err
}

// Delete elimina una clave; no falla si no existe.
func (s *Store) Delete(ns, key string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(ns))
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
}

// DeleteNamespace elimina el namespace completo; no falla si no existe.
func (s *Store) DeleteNamespace(ns string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		err := tx.DeleteBucket([]byte(ns))
		if errors.Is(err, bbolt.ErrBucketNotFound) {
			return nil
		}
		return err
	})
}

// Namespaces lista los namespaces existentes.
func (s *Store) Namespaces() ([]string, error) {
	var out []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bbolt.Bucket) error {
			out = append(out, string(name))
			return nil
		})
	})
	return out, err
}
