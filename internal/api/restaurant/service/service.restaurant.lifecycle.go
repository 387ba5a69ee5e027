package restaurantsvc

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	authmodels "talking_menu/internal/api/auth/models"
	basemodels "talking_menu/internal/api/base/models"
	chatmodels "talking_menu/internal/api/chat/models"
	dashboardsvc "talking_menu/internal/api/dashboard/service"
	restdto "talking_menu/internal/api/restaurant/dto"
	models "talking_menu/internal/api/restaurant/models"
	"talking_menu/internal/common"
	"talking_menu/internal/logger"
	"talking_menu/internal/store"
)

// Lỗi nghiệp vụ của nhà hàng
var (
	ErrAlreadyOwner = common.NewConflictError("User already owns this restaurant")
)

// chatsOnDetail là số chat gần nhất trả kèm khi đọc chi tiết nhà hàng
const chatsOnDetail = 50

// LifecycleService tạo/đọc/sửa/xóa/chuyển quyền sở hữu nhà hàng.
// Mỗi bước là một lần ghi riêng, không có transaction bao ngoài.
type LifecycleService struct {
	stores     *store.Stores
	dashboards *dashboardsvc.LifecycleService
}

// NewLifecycleService tạo LifecycleService
func NewLifecycleService(stores *store.Stores, dashboards *dashboardsvc.LifecycleService) *LifecycleService {
	return &LifecycleService{stores: stores, dashboards: dashboards}
}

// Create tạo nhà hàng dưới dashboard của caller, kèm analytics, chatbot và menu mặc định
func (s *LifecycleService) Create(ctx context.Context, principal *authmodels.User, dashboardID primitive.ObjectID, input *restdto.RestaurantCreateInput) (*restdto.RestaurantOutput, error) {
	dashboard, err := s.stores.Dashboards.FindByID(ctx, dashboardID)
	if err != nil {
		return nil, err
	}
	if dashboard.OwnerID != principal.FirebaseUID && !principal.IsPlatformAdmin() {
		return nil, common.ErrForbidden
	}

	ownerEmail := principal.Email
	if dashboard.OwnerID != principal.FirebaseUID {
		if owner, err := s.stores.Users.FindByUID(ctx, dashboard.OwnerID); err == nil {
			ownerEmail = owner.Email
		}
	}

	restaurant, err := s.stores.Restaurants.Create(ctx, models.Restaurant{
		Name:      input.Name,
		Location:  input.Location,
		OwnerID:   dashboard.OwnerID,
		Logo:      input.Logo,
		MenuLink:  input.MenuLink,
		OrderLink: input.OrderLink,
		UserAccess: []authmodels.UserAccess{{
			UserID:    dashboard.OwnerID,
			UserEmail: ownerEmail,
			Role:      authmodels.RoleRestaurantMainAdmin,
		}},
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.stores.Analytics.Create(ctx, restaurant.ID); err != nil {
		return nil, err
	}
	if _, err := s.stores.Chatbots.Create(ctx, models.Chatbot{
		RestaurantID:       restaurant.ID,
		SystemPrompt:       models.DefaultSystemPrompt,
		SuggestedQuestions: models.DefaultSuggestedQuestions(),
		Status:             models.ChatbotStatusOn,
		QRScanOnly:         false,
	}); err != nil {
		return nil, err
	}
	menu, err := s.stores.Menus.Create(ctx, models.Menu{RestaurantID: restaurant.ID})
	if err != nil {
		return nil, err
	}
	if err := s.stores.Restaurants.SetMenu(ctx, restaurant.ID, menu.ID); err != nil {
		return nil, err
	}
	restaurant.Menu = &menu.ID

	if err := s.stores.Dashboards.AddRestaurant(ctx, dashboard.ID, restaurant.ID); err != nil {
		return nil, err
	}
	if err := s.stores.Users.AddAccessibleRestaurant(ctx, dashboard.OwnerID, restaurant.ID); err != nil {
		return nil, err
	}

	logger.LogAction(ctx, logger.AuditRestaurantCreate, principal.FirebaseUID, "restaurant", restaurant.ID.Hex(), map[string]interface{}{
		"dashboard_id": dashboard.ID.Hex(),
	})
	return &restdto.RestaurantOutput{Restaurant: *restaurant, Menu: menu, Chats: []chatmodels.Chat{}}, nil
}

// Get trả về nhà hàng kèm menu và các chat gần nhất
func (s *LifecycleService) Get(ctx context.Context, id primitive.ObjectID) (*restdto.RestaurantOutput, error) {
	restaurant, err := s.stores.Restaurants.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := &restdto.RestaurantOutput{Restaurant: *restaurant, Chats: []chatmodels.Chat{}}

	if menu, err := s.stores.Menus.FindByRestaurant(ctx, id); err == nil {
		out.Menu = menu
	} else if !isNotFound(err) {
		return nil, err
	}

	chats, err := s.stores.Chats.ListByRestaurant(ctx, id, 1, chatsOnDetail)
	if err != nil {
		return nil, err
	}
	out.Chats = chats.Items
	return out, nil
}

// List phân trang toàn bộ nhà hàng (chỉ platform admin).
// search khớp name, location hoặc email owner, không phân biệt hoa thường.
func (s *LifecycleService) List(ctx context.Context, principal *authmodels.User, search string, page, limit int64) (*basemodels.PaginateResult[restdto.RestaurantListItem], error) {
	if principal == nil || !principal.IsPlatformAdmin() {
		return nil, common.ErrAdminRequired
	}

	filter := store.RestaurantFilter{Search: strings.TrimSpace(search)}
	if filter.Search != "" {
		uids, err := s.stores.Users.FindUIDsByEmailLike(ctx, filter.Search)
		if err != nil {
			return nil, err
		}
		filter.OwnerIDs = uids
	}

	result, err := s.stores.Restaurants.List(ctx, filter, page, limit)
	if err != nil {
		return nil, err
	}

	ownerIDs := make([]string, 0, len(result.Items))
	for _, r := range result.Items {
		ownerIDs = append(ownerIDs, r.OwnerID)
	}
	owners, err := s.stores.Users.FindByUIDs(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}
	emails := make(map[string]string, len(owners))
	for _, u := range owners {
		emails[u.FirebaseUID] = u.Email
	}

	items := make([]restdto.RestaurantListItem, 0, len(result.Items))
	for _, r := range result.Items {
		item := restdto.RestaurantListItem{Restaurant: r, OwnerEmail: emails[r.OwnerID]}
		if d, err := s.stores.Dashboards.FindByRestaurant(ctx, r.ID); err == nil {
			item.DashboardID = &d.ID
		} else if !isNotFound(err) {
			return nil, err
		}
		items = append(items, item)
	}
	return basemodels.NewPaginateResult(items, result.Page, result.Limit, result.Total), nil
}

// Update sửa một phần các field name/location/logo/menuLink/orderLink
func (s *LifecycleService) Update(ctx context.Context, id primitive.ObjectID, input *restdto.RestaurantUpdateInput) (*models.Restaurant, error) {
	fields := input.Fields()
	if len(fields) == 0 {
		return s.stores.Restaurants.FindByID(ctx, id)
	}
	return s.stores.Restaurants.Update(ctx, id, fields)
}

// Delete xóa nhà hàng và dọn các tham chiếu tới nó.
// Thứ tự: chat id → starredChats/UserChats → chatbot, chats, menu, analytics →
// accessibleRestaurants (+ hạ role) → dashboards → restaurant.
func (s *LifecycleService) Delete(ctx context.Context, principal *authmodels.User, id primitive.ObjectID) error {
	if _, err := s.stores.Restaurants.FindByID(ctx, id); err != nil {
		return err
	}

	chatIDs, err := s.stores.Chats.FindIDsByRestaurant(ctx, id)
	if err != nil {
		return err
	}
	if err := s.stores.Users.PullStarredChats(ctx, chatIDs); err != nil {
		return err
	}
	if err := s.stores.UserChats.PullChats(ctx, chatIDs); err != nil {
		return err
	}

	if err := s.stores.Chatbots.DeleteByRestaurant(ctx, id); err != nil {
		return err
	}
	if _, err := s.stores.Chats.DeleteByRestaurant(ctx, id); err != nil {
		return err
	}
	if err := s.stores.Menus.DeleteByRestaurant(ctx, id); err != nil {
		return err
	}
	if err := s.stores.Analytics.DeleteByRestaurant(ctx, id); err != nil {
		return err
	}

	affected, err := s.stores.Users.FindByAccessibleRestaurant(ctx, id)
	if err != nil {
		return err
	}
	uids := make([]string, 0, len(affected))
	for _, u := range affected {
		uids = append(uids, u.FirebaseUID)
	}
	if err := s.stores.Users.PullAccessibleRestaurantFromAll(ctx, id); err != nil {
		return err
	}
	demoted, err := s.stores.Users.RemoveRoleIfNoRestaurants(ctx, uids, authmodels.RoleRestaurantAdmin)
	if err != nil {
		return err
	}

	if err := s.stores.Dashboards.PullRestaurantFromAll(ctx, id); err != nil {
		return err
	}
	if err := s.stores.Restaurants.Delete(ctx, id); err != nil {
		return err
	}

	logger.LogAction(ctx, logger.AuditRestaurantDelete, principal.FirebaseUID, "restaurant", id.Hex(), map[string]interface{}{
		"chats_deleted": len(chatIDs),
		"users_demoted": demoted,
	})
	return nil
}

// Transfer chuyển quyền sở hữu nhà hàng cho user có email cho trước.
// Người nhận chưa có dashboard thì được tạo một dashboard mới.
func (s *LifecycleService) Transfer(ctx context.Context, principal *authmodels.User, id primitive.ObjectID, email string) (*restdto.TransferOutput, error) {
	restaurant, err := s.stores.Restaurants.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	newOwner, err := s.stores.Users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, err
	}
	if newOwner.FirebaseUID == restaurant.OwnerID {
		return nil, ErrAlreadyOwner
	}
	previousOwner := restaurant.OwnerID

	newDashboard, created, err := s.dashboards.GetOrProvision(ctx, newOwner.FirebaseUID)
	if err != nil {
		return nil, err
	}

	updated, err := s.stores.Restaurants.TransferOwnership(ctx, id, authmodels.UserAccess{
		UserID:    newOwner.FirebaseUID,
		UserEmail: newOwner.Email,
		Role:      authmodels.RoleRestaurantMainAdmin,
	})
	if err != nil {
		return nil, err
	}

	if err := s.stores.Dashboards.PullRestaurantFromAll(ctx, id); err != nil {
		return nil, err
	}
	if err := s.stores.Dashboards.AddRestaurant(ctx, newDashboard.ID, id); err != nil {
		return nil, err
	}

	if err := s.stores.Users.RemoveAccessibleRestaurant(ctx, previousOwner, id); err != nil && !isNotFound(err) {
		return nil, err
	}
	if err := s.stores.Users.AddAccessibleRestaurant(ctx, newOwner.FirebaseUID, id); err != nil {
		return nil, err
	}
	if err := s.stores.Users.AddRole(ctx, newOwner.FirebaseUID, authmodels.RoleRestaurantMainAdmin); err != nil {
		return nil, err
	}
	if err := s.stores.Users.AddAccessibleDashboard(ctx, newOwner.FirebaseUID, newDashboard.ID); err != nil {
		return nil, err
	}

	logger.LogAction(ctx, logger.AuditRestaurantTransfer, principal.FirebaseUID, "restaurant", id.Hex(), map[string]interface{}{
		"from":              previousOwner,
		"to":                newOwner.FirebaseUID,
		"dashboard_created": created,
	})
	return &restdto.TransferOutput{
		Restaurant:       updated,
		NewDashboardID:   newDashboard.ID,
		DashboardCreated: created,
		PreviousOwnerID:  previousOwner,
	}, nil
}
