package supabase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retouchlab-backend/internal/supabase"
)

func TestStorageClient_GetPublicURL(t *testing.T) {
	client, err := supabase.NewStorageClient("https://project.supabase.co/", "anon-key", "retouch-files")
	require.NoError(t, err)

	url := client.GetPublicURL("content/homepage/hero.jpg")
	assert.Equal(t, "https://project.supabase.co/storage/v1/object/public/retouch-files/content/homepage/hero.jpg", url)
}

func TestStorageKinds(t *testing.T) {
	// Both kinds live under the same order prefix so DeleteOrderFiles can
	// clear them in one pass.
	assert.Equal(t, "originals", supabase.KindOriginal)
	assert.Equal(t, "delivered", supabase.KindDelivered)
}
