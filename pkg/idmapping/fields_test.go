package idmapping

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Sternrassler/uniprot-idmapping/pkg/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchFields(t *testing.T) {
	mock := newMock(t)

	fc, err := FetchFields(context.Background(), newTestClient(t, mock.URL()))
	require.NoError(t, err)

	assert.Equal(t, []string{"UniProtKB_AC-ID", "UniProtKB-Swiss-Prot"}, fc.From())
	assert.Equal(t, []string{"UniProtKB", "UniProtKB-Swiss-Prot"}, fc.To())
	assert.Len(t, fc.All(), 4)
}

func TestFetchFields_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := FetchFields(context.Background(), newTestClient(t, server.URL))

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
}

func TestFieldCatalogue_Empty(t *testing.T) {
	var fc FieldCatalogue
	assert.Nil(t, fc.From())
	assert.Nil(t, fc.To())
}
