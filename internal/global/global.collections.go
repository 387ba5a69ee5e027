package global

import (
	"go.mongodb.org/mongo-driver/mongo"

	"talking_menu/internal/logger"
)

// CollectionNames trả về tên tất cả collection của hệ thống
func CollectionNames() []string {
	names := MongoDB_ColNames
	return []string{
		names.Users, names.Dashboards, names.Restaurants, names.Chatbots, names.Menus,
		names.Chats, names.UserChats, names.CustomerSubscriptions, names.SubscriptionPackages,
		names.TokenUsages, names.RestaurantAnalytics,
	}
}

// RegisterCollections đăng ký các collection của db vào RegistryCollections
func RegisterCollections(db *mongo.Database) error {
	log := logger.GetAppLogger()
	for _, name := range CollectionNames() {
		registered, err := RegistryCollections.Register(name, db.Collection(name))
		if err != nil {
			log.Errorf("Failed to register collection %s: %v", name, err)
			return err
		}
		if registered {
			log.Debugf("Collection %s registered successfully", name)
		} else {
			log.Warnf("Collection %s already registered", name)
		}
	}
	return nil
}
