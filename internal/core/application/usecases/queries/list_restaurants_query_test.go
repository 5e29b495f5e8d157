package queries_test

import (
	"testing"

	"forecast/internal/core/application/usecases/queries"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewListRestaurantsQuery(t *testing.T) {
	// Act
	query := queries.NewListRestaurantsQuery()

	// Assert
	assert.NoError(t, query.Validate())
}

func TestListRestaurantsQuery_Validate_ZeroValue(t *testing.T) {
	// Arrange - zero value query (not constructed via constructor)
	var query queries.ListRestaurantsQuery

	// Act
	err := query.Validate()

	// Assert
	require.Error(t, err)
	require.ErrorIs(t, err, queries.ErrListRestaurantsQueryIsNotConstructed)
}
