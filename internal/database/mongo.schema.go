package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	authmodels "talking_menu/internal/api/auth/models"
	chatmodels "talking_menu/internal/api/chat/models"
	dashmodels "talking_menu/internal/api/dashboard/models"
	restmodels "talking_menu/internal/api/restaurant/models"
	submodels "talking_menu/internal/api/subscription/models"
	"talking_menu/internal/global"
)

// EnsureSchema tạo các collection còn thiếu và index khai báo trên model
func EnsureSchema(ctx context.Context, db *mongo.Database) error {
	if err := EnsureCollections(ctx, db, global.CollectionNames()); err != nil {
		return err
	}

	names := global.MongoDB_ColNames
	indexed := []struct {
		name  string
		model interface{}
	}{
		{names.Users, authmodels.User{}},
		{names.Dashboards, dashmodels.Dashboard{}},
		{names.Restaurants, restmodels.Restaurant{}},
		{names.Chatbots, restmodels.Chatbot{}},
		{names.Menus, restmodels.Menu{}},
		{names.RestaurantAnalytics, restmodels.RestaurantAnalytics{}},
		{names.Chats, chatmodels.Chat{}},
		{names.UserChats, chatmodels.UserChats{}},
		{names.SubscriptionPackages, submodels.SubscriptionPackage{}},
		{names.CustomerSubscriptions, submodels.CustomerSubscription{}},
		{names.TokenUsages, submodels.TokenUsage{}},
	}
	for _, item := range indexed {
		if err := CreateIndexes(ctx, db.Collection(item.name), item.model); err != nil {
			return fmt.Errorf("failed to create indexes for %s: %w", item.name, err)
		}
	}
	return nil
}
