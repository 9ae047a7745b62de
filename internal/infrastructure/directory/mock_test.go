package directory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockDirectoryReturnsCompanies(t *testing.T) {
	d := NewMockDirectory(time.Millisecond)

	got, err := d.FindCustomers(context.Background(), "Acme")
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme Company", "Acme Solutions", "Acme Corp"}, got)
}

func TestMockDirectoryHonoursCancellation(t *testing.T) {
	d := NewMockDirectory(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, err := d.FindCustomers(ctx, "Acme")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}
