package repo

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsDuplicateKey(t *testing.T) {
	dup := &pq.Error{Code: "23505"}

	assert.True(t, isDuplicateKey(dup))
	assert.True(t, isDuplicateKey(fmt.Errorf("insert transfer: %w", dup)))
	assert.False(t, isDuplicateKey(&pq.Error{Code: "23503"}))
	assert.False(t, isDuplicateKey(errors.New("connection reset")))
	assert.False(t, isDuplicateKey(nil))
}
