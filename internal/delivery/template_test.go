package delivery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplate_Render(t *testing.T) {
	out := EmployeeAccessGranted.Render(map[string]interface{}{
		"restaurantName": "Bún & Chả",
		"role":           "restaurant_admin",
		"baseUrl":        "https://app.example.com",
	})
	assert.Equal(t, "You now have access to Bún & Chả", out.Subject)
	assert.Contains(t, out.Content, "<strong>Bún &amp; Chả</strong>")
	assert.Contains(t, out.Content, "<em>restaurant_admin</em>")
	require.Len(t, out.CTAs, 1)
	assert.Equal(t, "https://app.example.com/dashboard", out.CTAs[0].Action)
}

func TestTemplate_RenderDropsCTAWithoutBaseURL(t *testing.T) {
	out := EmployeeAccessGranted.Render(map[string]interface{}{"restaurantName": "Pho 24"})
	assert.Empty(t, out.CTAs)
	assert.Contains(t, out.Content, "<em></em>")
}
