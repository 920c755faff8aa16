package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestStatusOnlyAdvancesForward(t *testing.T) {
	next, ok := StatusInReview.Next()
	require.True(t, ok)
	assert.Equal(t, StatusApproved, next)

	next, ok = StatusApproved.Next()
	require.True(t, ok)
	assert.Equal(t, StatusDelivered, next)

	_, ok = StatusDelivered.Next()
	assert.False(t, ok)

	_, ok = RequestStatus("Rechazado").Next()
	assert.False(t, ok)
}

func TestRequestStatusLabels(t *testing.T) {
	assert.Equal(t, "Aprobar", StatusInReview.ActionLabel())
	assert.Equal(t, "Marcar entregado", StatusApproved.ActionLabel())
	assert.Empty(t, StatusDelivered.ActionLabel())
	assert.True(t, StatusInReview.Editable())
	assert.False(t, StatusApproved.Editable())
}

func TestArticleRefRoundTrip(t *testing.T) {
	var line MaterialLine
	require.NoError(t, json.Unmarshal([]byte(`{"codigoArticulo":"abc","cantidad":3}`), &line))
	assert.Equal(t, "abc", line.Article.Key())
	assert.Equal(t, "abc", line.Article.Code())
	assert.Equal(t, "abc", line.Article.Label())
	assert.Empty(t, line.Article.Name())

	out, err := json.Marshal(line.Article)
	require.NoError(t, err)
	assert.JSONEq(t, `"abc"`, string(out))

	require.NoError(t, json.Unmarshal([]byte(`{"codigoArticulo":null,"cantidad":1}`), &line))
	assert.Equal(t, "—", line.Article.Label())

	assert.Error(t, json.Unmarshal([]byte(`{"codigoArticulo":12}`), &line))
}

func TestSessionUserDisplayName(t *testing.T) {
	assert.Equal(t, "Ana Pérez", SessionUser{Username: "ana", FullName: "Ana Pérez"}.DisplayName())
	assert.Equal(t, "ana", SessionUser{Username: "ana"}.DisplayName())
	assert.True(t, SessionUser{Role: RoleAdmin}.IsAdmin())
	assert.False(t, SessionUser{Role: RoleUsuario}.IsAdmin())
}

func TestArticleLowStock(t *testing.T) {
	assert.True(t, Article{Stock: 5}.LowStock())
	assert.True(t, Article{Stock: 0}.LowStock())
	assert.False(t, Article{Stock: 6}.LowStock())
}
