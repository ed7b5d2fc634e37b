package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdvisoryLocker_Unlock(t *testing.T) {
	t.Run("Unlock sem TryLock prévio retorna erro e não toca o banco", func(t *testing.T) {
		locker := NewAdvisoryLocker(&Connection{})

		err := locker.Unlock("conn-1")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "não estava adquirido")
	})
}

func TestHashKey(t *testing.T) {
	t.Run("Mesma chave sempre produz o mesmo hash", func(t *testing.T) {
		assert.Equal(t, hashKey("conn-1"), hashKey("conn-1"))
	})

	t.Run("Chaves diferentes produzem hashes diferentes", func(t *testing.T) {
		assert.NotEqual(t, hashKey("conn-1"), hashKey("conn-2"))
	})
}
