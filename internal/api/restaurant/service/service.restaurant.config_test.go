package restaurantsvc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	restdto "talking_menu/internal/api/restaurant/dto"
	models "talking_menu/internal/api/restaurant/models"
)

func TestConfig_MenuItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	out := f.createRestaurant(t, "Pho 24")
	cfg := NewConfigService(f.stores)

	menu, err := cfg.AddMenuItems(ctx, out.ID, &restdto.MenuItemsInput{Items: []restdto.MenuItemInput{
		{Name: "Pho bo", Price: 5.5},
		{Name: "Pho ga", Price: 5},
	}})
	require.NoError(t, err)
	require.Len(t, menu.MenuItems, 2)
	assert.NotEqual(t, menu.MenuItems[0].ID, menu.MenuItems[1].ID)

	price := 6.0
	menu, err = cfg.UpdateMenuItem(ctx, out.ID, menu.MenuItems[0].ID, &restdto.MenuItemUpdateInput{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 6.0, menu.MenuItems[0].Price)
	assert.Equal(t, "Pho bo", menu.MenuItems[0].Name)

	menu, err = cfg.DeleteMenuItems(ctx, out.ID, []string{menu.MenuItems[1].ID.Hex()})
	require.NoError(t, err)
	require.Len(t, menu.MenuItems, 1)
	assert.Equal(t, "Pho bo", menu.MenuItems[0].Name)

	_, err = cfg.DeleteMenuItems(ctx, out.ID, []string{"bad"})
	assert.Error(t, err)
}

func TestConfig_Chatbot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	out := f.createRestaurant(t, "Pho 24")
	cfg := NewConfigService(f.stores)

	bot, err := cfg.SetChatbotStatus(ctx, out.ID, models.ChatbotStatusOff)
	require.NoError(t, err)
	assert.False(t, bot.IsOn())

	_, err = cfg.SetChatbotStatus(ctx, out.ID, "maybe")
	assert.Error(t, err)

	qr := true
	prompt := "Only talk about noodles."
	bot, err = cfg.UpdateChatbot(ctx, out.ID, &restdto.ChatbotUpdateInput{SystemPrompt: &prompt, QRScanOnly: &qr})
	require.NoError(t, err)
	assert.True(t, bot.QRScanOnly)
	assert.Equal(t, prompt, bot.SystemPrompt)

	bot, err = cfg.SetSuggestedQuestions(ctx, out.ID, []models.RichTextDocument{models.NewParagraphDocument("Spicy?")})
	require.NoError(t, err)
	assert.Len(t, bot.SuggestedQuestions, 1)
}
