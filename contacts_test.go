package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactStore(t *testing.T) {
	t.Run("SaveAndGet", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()
		store := NewContactStore(db)

		contact := Contact{ID: "c-1", Name: "Alice", Address: testAddressA, AddressBTC: "bc1qalice"}
		require.NoError(t, store.Save(contact))

		got, err := store.Get("c-1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Alice", got.Name)
		assert.Equal(t, testAddressA, got.Address)
	})

	t.Run("GetUnknown", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()
		store := NewContactStore(db)

		got, err := store.Get("missing")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("SaveUpserts", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()
		store := NewContactStore(db)

		require.NoError(t, store.Save(Contact{ID: "c-1", Name: "Alice", Address: testAddressA}))
		require.NoError(t, store.Save(Contact{ID: "c-1", Name: "Alice Updated", Address: testAddressB}))

		got, err := store.Get("c-1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Alice Updated", got.Name)
		assert.Equal(t, testAddressB, got.Address)

		contacts, err := store.List()
		require.NoError(t, err)
		assert.Len(t, contacts, 1)
	})

	t.Run("ListOrdered", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()
		store := NewContactStore(db)

		require.NoError(t, store.Save(Contact{ID: "c-1", Name: "First", Address: testAddressA}))
		require.NoError(t, store.Save(Contact{ID: "c-2", Name: "Second", Address: testAddressB}))

		contacts, err := store.List()
		require.NoError(t, err)
		require.Len(t, contacts, 2)
		assert.Equal(t, "First", contacts[0].Name)
		assert.Equal(t, "Second", contacts[1].Name)
	})

	t.Run("Remove", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()
		store := NewContactStore(db)

		require.NoError(t, store.Save(Contact{ID: "c-1", Name: "Alice", Address: testAddressA}))
		require.NoError(t, store.Remove("c-1"))

		got, err := store.Get("c-1")
		require.NoError(t, err)
		assert.Nil(t, got)

		// Removing an unknown id is a no-op.
		require.NoError(t, store.Remove("missing"))
	})
}
