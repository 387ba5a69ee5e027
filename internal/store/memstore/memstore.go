// Package memstore cài đặt các interface của store trên bộ nhớ, dùng cho test nghiệp vụ và handler.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	authmodels "talking_menu/internal/api/auth/models"
	basemodels "talking_menu/internal/api/base/models"
	chatmodels "talking_menu/internal/api/chat/models"
	dashmodels "talking_menu/internal/api/dashboard/models"
	restmodels "talking_menu/internal/api/restaurant/models"
	submodels "talking_menu/internal/api/subscription/models"
	"talking_menu/internal/common"
	"talking_menu/internal/store"
)

// DB giữ toàn bộ dữ liệu, mọi thao tác đi qua một mutex
type DB struct {
	mu sync.Mutex

	users         map[string]*authmodels.User // key: firebaseUid
	dashboards    map[primitive.ObjectID]*dashmodels.Dashboard
	restaurants   map[primitive.ObjectID]*restmodels.Restaurant
	chatbots      map[primitive.ObjectID]*restmodels.Chatbot // key: restaurantId
	menus         map[primitive.ObjectID]*restmodels.Menu    // key: restaurantId
	chats         map[primitive.ObjectID]*chatmodels.Chat
	userChats     map[string]*chatmodels.UserChats
	analytics     map[primitive.ObjectID]*restmodels.RestaurantAnalytics // key: restaurantId
	packages      map[primitive.ObjectID]*submodels.SubscriptionPackage
	subscriptions map[primitive.ObjectID]*submodels.CustomerSubscription
	tokenUsages   map[submodels.TokenUsageKey]*submodels.TokenUsage
}

// New tạo DB rỗng
func New() *DB {
	return &DB{
		users:         map[string]*authmodels.User{},
		dashboards:    map[primitive.ObjectID]*dashmodels.Dashboard{},
		restaurants:   map[primitive.ObjectID]*restmodels.Restaurant{},
		chatbots:      map[primitive.ObjectID]*restmodels.Chatbot{},
		menus:         map[primitive.ObjectID]*restmodels.Menu{},
		chats:         map[primitive.ObjectID]*chatmodels.Chat{},
		userChats:     map[string]*chatmodels.UserChats{},
		analytics:     map[primitive.ObjectID]*restmodels.RestaurantAnalytics{},
		packages:      map[primitive.ObjectID]*submodels.SubscriptionPackage{},
		subscriptions: map[primitive.ObjectID]*submodels.CustomerSubscription{},
		tokenUsages:   map[submodels.TokenUsageKey]*submodels.TokenUsage{},
	}
}

// Stores trả về bộ store dùng chung DB này
func (db *DB) Stores() *store.Stores {
	return &store.Stores{
		Users:                 &Users{db},
		Dashboards:            &Dashboards{db},
		Restaurants:           &Restaurants{db},
		Chatbots:              &Chatbots{db},
		Menus:                 &Menus{db},
		Chats:                 &Chats{db},
		UserChats:             &UserChats{db},
		Analytics:             &Analytics{db},
		Packages:              &Packages{db},
		CustomerSubscriptions: &CustomerSubscriptions{db},
		TokenUsages:           &TokenUsages{db},
	}
}

// NewStores là viết tắt của New().Stores()
func NewStores() *store.Stores {
	return New().Stores()
}

func nowMilli() int64 {
	return time.Now().UnixMilli()
}

func paginate[T any](items []T, page, limit int64) *basemodels.PaginateResult[T] {
	page, limit = basemodels.NormalizePage(page, limit)
	total := int64(len(items))
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return basemodels.NewPaginateResult(append([]T{}, items[start:end]...), page, limit, total)
}

func addID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	for _, x := range ids {
		if x == id {
			return ids
		}
	}
	return append(ids, id)
}

func removeIDs(ids []primitive.ObjectID, drop ...primitive.ObjectID) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, x := range ids {
		keep := true
		for _, d := range drop {
			if x == d {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, x)
		}
	}
	return out
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func removeAccess(roster []authmodels.UserAccess, uid string) []authmodels.UserAccess {
	out := make([]authmodels.UserAccess, 0, len(roster))
	for _, a := range roster {
		if a.UserID != uid {
			out = append(out, a)
		}
	}
	return out
}

// ---------- Users ----------

// Users cài đặt store.UserStore
type Users struct{ db *DB }

func cloneUser(u *authmodels.User) *authmodels.User {
	c := *u
	c.Roles = append([]string{}, u.Roles...)
	c.AccessibleDashboards = append([]primitive.ObjectID{}, u.AccessibleDashboards...)
	c.AccessibleRestaurants = append([]primitive.ObjectID{}, u.AccessibleRestaurants...)
	c.StarredChats = append([]primitive.ObjectID{}, u.StarredChats...)
	return &c
}

// PutUser ghi trực tiếp một user (dùng để chuẩn bị dữ liệu test)
func (db *DB) PutUser(u authmodels.User) *authmodels.User {
	db.mu.Lock()
	defer db.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.EnsureSlices()
	db.users[u.FirebaseUID] = cloneUser(&u)
	return cloneUser(&u)
}

func (s *Users) FindByUID(_ context.Context, uid string) (*authmodels.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[uid]
	if !ok {
		return nil, common.ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *Users) FindByEmail(_ context.Context, email string) (*authmodels.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, u := range s.db.users {
		if strings.EqualFold(u.Email, email) {
			return cloneUser(u), nil
		}
	}
	return nil, common.ErrNotFound
}

func (s *Users) FindByUIDs(_ context.Context, uids []string) ([]authmodels.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := []authmodels.User{}
	for _, uid := range uids {
		if u, ok := s.db.users[uid]; ok {
			out = append(out, *cloneUser(u))
		}
	}
	return out, nil
}

func (s *Users) FindUIDsByEmailLike(_ context.Context, substr string) ([]string, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := []string{}
	needle := strings.ToLower(substr)
	for uid, u := range s.db.users {
		if u.Email != "" && strings.Contains(strings.ToLower(u.Email), needle) {
			out = append(out, uid)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *Users) FindByAccessibleRestaurant(_ context.Context, restaurantID primitive.ObjectID) ([]authmodels.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := []authmodels.User{}
	for _, u := range s.db.users {
		if containsID(u.AccessibleRestaurants, restaurantID) {
			out = append(out, *cloneUser(u))
		}
	}
	return out, nil
}

func (s *Users) Upsert(_ context.Context, uid string, profile store.UserProfile) (*authmodels.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	now := nowMilli()
	u, ok := s.db.users[uid]
	if !ok {
		u = &authmodels.User{
			ID:          primitive.NewObjectID(),
			FirebaseUID: uid,
			Roles:       []string{authmodels.RoleDiner},
			CreatedAt:   now,
		}
		u.EnsureSlices()
		s.db.users[uid] = u
	}
	if profile.Name != "" {
		u.Name = profile.Name
	}
	if profile.Email != "" {
		u.Email = profile.Email
	}
	if profile.AvatarURL != "" {
		u.AvatarURL = profile.AvatarURL
	}
	u.UpdatedAt = now
	return cloneUser(u), nil
}

func (s *Users) UpdateProfile(_ context.Context, uid string, name, avatarURL *string) (*authmodels.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[uid]
	if !ok {
		return nil, common.ErrNotFound
	}
	if name != nil {
		u.Name = *name
	}
	if avatarURL != nil {
		u.AvatarURL = *avatarURL
	}
	u.UpdatedAt = nowMilli()
	return cloneUser(u), nil
}

func (s *Users) mutate(uid string, f func(u *authmodels.User)) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[uid]
	if !ok {
		return common.ErrNotFound
	}
	f(u)
	u.UpdatedAt = nowMilli()
	return nil
}

func (s *Users) AddRole(_ context.Context, uid, role string) error {
	return s.mutate(uid, func(u *authmodels.User) {
		if !u.HasRole(role) {
			u.Roles = append(u.Roles, role)
		}
	})
}

func (s *Users) RemoveRoleIfNoRestaurants(_ context.Context, uids []string, role string) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var n int64
	for _, uid := range uids {
		u, ok := s.db.users[uid]
		if !ok || len(u.AccessibleRestaurants) > 0 || !u.HasRole(role) {
			continue
		}
		roles := make([]string, 0, len(u.Roles))
		for _, r := range u.Roles {
			if r != role {
				roles = append(roles, r)
			}
		}
		u.Roles = roles
		n++
	}
	return n, nil
}

func (s *Users) AddAccessibleDashboard(_ context.Context, uid string, id primitive.ObjectID) error {
	return s.mutate(uid, func(u *authmodels.User) { u.AccessibleDashboards = addID(u.AccessibleDashboards, id) })
}

func (s *Users) RemoveAccessibleDashboard(_ context.Context, uid string, id primitive.ObjectID) error {
	return s.mutate(uid, func(u *authmodels.User) { u.AccessibleDashboards = removeIDs(u.AccessibleDashboards, id) })
}

func (s *Users) AddAccessibleRestaurant(_ context.Context, uid string, id primitive.ObjectID) error {
	return s.mutate(uid, func(u *authmodels.User) { u.AccessibleRestaurants = addID(u.AccessibleRestaurants, id) })
}

func (s *Users) RemoveAccessibleRestaurant(_ context.Context, uid string, id primitive.ObjectID) error {
	return s.mutate(uid, func(u *authmodels.User) { u.AccessibleRestaurants = removeIDs(u.AccessibleRestaurants, id) })
}

func (s *Users) PullAccessibleRestaurantFromAll(_ context.Context, id primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, u := range s.db.users {
		u.AccessibleRestaurants = removeIDs(u.AccessibleRestaurants, id)
	}
	return nil
}

func (s *Users) SetStarredChat(_ context.Context, uid string, chatID primitive.ObjectID, starred bool) error {
	return s.mutate(uid, func(u *authmodels.User) {
		if starred {
			u.StarredChats = addID(u.StarredChats, chatID)
		} else {
			u.StarredChats = removeIDs(u.StarredChats, chatID)
		}
	})
}

func (s *Users) PullStarredChats(_ context.Context, chatIDs []primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, u := range s.db.users {
		u.StarredChats = removeIDs(u.StarredChats, chatIDs...)
	}
	return nil
}

// ---------- Dashboards ----------

// Dashboards cài đặt store.DashboardStore
type Dashboards struct{ db *DB }

func cloneDashboard(d *dashmodels.Dashboard) *dashmodels.Dashboard {
	c := *d
	c.Restaurants = append([]primitive.ObjectID{}, d.Restaurants...)
	c.UserAccess = append([]authmodels.UserAccess{}, d.UserAccess...)
	if d.CustomerSubscriptionID != nil {
		id := *d.CustomerSubscriptionID
		c.CustomerSubscriptionID = &id
	}
	return &c
}

func (s *Dashboards) Create(_ context.Context, d dashmodels.Dashboard) (*dashmodels.Dashboard, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	// giống unique index trên ownerId
	for _, x := range s.db.dashboards {
		if x.OwnerID == d.OwnerID {
			return nil, common.ErrMongoDuplicate
		}
	}
	d.ID = primitive.NewObjectID()
	if d.Restaurants == nil {
		d.Restaurants = []primitive.ObjectID{}
	}
	if d.UserAccess == nil {
		d.UserAccess = []authmodels.UserAccess{}
	}
	d.CreatedAt, d.UpdatedAt = nowMilli(), nowMilli()
	s.db.dashboards[d.ID] = cloneDashboard(&d)
	return cloneDashboard(&d), nil
}

func (s *Dashboards) FindByID(_ context.Context, id primitive.ObjectID) (*dashmodels.Dashboard, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	d, ok := s.db.dashboards[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return cloneDashboard(d), nil
}

func (s *Dashboards) FindByOwner(_ context.Context, ownerUID string) (*dashmodels.Dashboard, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, d := range s.db.dashboards {
		if d.OwnerID == ownerUID {
			return cloneDashboard(d), nil
		}
	}
	return nil, common.ErrNotFound
}

func (s *Dashboards) FindByRestaurant(_ context.Context, restaurantID primitive.ObjectID) (*dashmodels.Dashboard, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, d := range s.db.dashboards {
		if containsID(d.Restaurants, restaurantID) {
			return cloneDashboard(d), nil
		}
	}
	return nil, common.ErrNotFound
}

func (s *Dashboards) FindForPrincipal(_ context.Context, uid string) ([]dashmodels.Dashboard, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := []dashmodels.Dashboard{}
	for _, d := range s.db.dashboards {
		if d.OwnerID == uid || authmodels.HasAccess(d.UserAccess, uid) {
			out = append(out, *cloneDashboard(d))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	return out, nil
}

func (s *Dashboards) mutate(id primitive.ObjectID, f func(d *dashmodels.Dashboard)) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	d, ok := s.db.dashboards[id]
	if !ok {
		return common.ErrNotFound
	}
	f(d)
	d.UpdatedAt = nowMilli()
	return nil
}

func (s *Dashboards) SetSubscription(_ context.Context, id, subscriptionID primitive.ObjectID) error {
	return s.mutate(id, func(d *dashmodels.Dashboard) { d.CustomerSubscriptionID = &subscriptionID })
}

func (s *Dashboards) AddRestaurant(_ context.Context, id, restaurantID primitive.ObjectID) error {
	return s.mutate(id, func(d *dashmodels.Dashboard) { d.Restaurants = addID(d.Restaurants, restaurantID) })
}

func (s *Dashboards) RemoveRestaurant(_ context.Context, id, restaurantID primitive.ObjectID) error {
	return s.mutate(id, func(d *dashmodels.Dashboard) { d.Restaurants = removeIDs(d.Restaurants, restaurantID) })
}

func (s *Dashboards) PullRestaurantFromAll(_ context.Context, restaurantID primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, d := range s.db.dashboards {
		d.Restaurants = removeIDs(d.Restaurants, restaurantID)
	}
	return nil
}

func (s *Dashboards) AddUserAccess(_ context.Context, id primitive.ObjectID, access authmodels.UserAccess) error {
	return s.mutate(id, func(d *dashmodels.Dashboard) {
		if !authmodels.HasAccess(d.UserAccess, access.UserID) {
			d.UserAccess = append(d.UserAccess, access)
		}
	})
}

func (s *Dashboards) RemoveUserAccess(_ context.Context, id primitive.ObjectID, uid string) error {
	return s.mutate(id, func(d *dashmodels.Dashboard) { d.UserAccess = removeAccess(d.UserAccess, uid) })
}

// ---------- Restaurants ----------

// Restaurants cài đặt store.RestaurantStore
type Restaurants struct{ db *DB }

func cloneRestaurant(r *restmodels.Restaurant) *restmodels.Restaurant {
	c := *r
	c.Chats = append([]primitive.ObjectID{}, r.Chats...)
	c.UserAccess = append([]authmodels.UserAccess{}, r.UserAccess...)
	if r.Menu != nil {
		id := *r.Menu
		c.Menu = &id
	}
	return &c
}

func (s *Restaurants) Create(_ context.Context, r restmodels.Restaurant) (*restmodels.Restaurant, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	r.ID = primitive.NewObjectID()
	if r.Chats == nil {
		r.Chats = []primitive.ObjectID{}
	}
	if r.UserAccess == nil {
		r.UserAccess = []authmodels.UserAccess{}
	}
	r.CreatedAt, r.UpdatedAt = nowMilli(), nowMilli()
	s.db.restaurants[r.ID] = cloneRestaurant(&r)
	return cloneRestaurant(&r), nil
}

func (s *Restaurants) FindByID(_ context.Context, id primitive.ObjectID) (*restmodels.Restaurant, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	r, ok := s.db.restaurants[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return cloneRestaurant(r), nil
}

func (s *Restaurants) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]restmodels.Restaurant, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := []restmodels.Restaurant{}
	for _, id := range ids {
		if r, ok := s.db.restaurants[id]; ok {
			out = append(out, *cloneRestaurant(r))
		}
	}
	return out, nil
}

func (s *Restaurants) List(_ context.Context, filter store.RestaurantFilter, page, limit int64) (*basemodels.PaginateResult[restmodels.Restaurant], error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	needle := strings.ToLower(filter.Search)
	items := []restmodels.Restaurant{}
	for _, r := range s.db.restaurants {
		if needle != "" {
			match := strings.Contains(strings.ToLower(r.Name), needle) ||
				strings.Contains(strings.ToLower(r.Location), needle)
			for _, uid := range filter.OwnerIDs {
				if r.OwnerID == uid {
					match = true
				}
			}
			if !match {
				continue
			}
		}
		items = append(items, *cloneRestaurant(r))
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt > items[j].CreatedAt })
	return paginate(items, page, limit), nil
}

func (s *Restaurants) mutate(id primitive.ObjectID, f func(r *restmodels.Restaurant)) (*restmodels.Restaurant, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	r, ok := s.db.restaurants[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	f(r)
	r.UpdatedAt = nowMilli()
	return cloneRestaurant(r), nil
}

func (s *Restaurants) Update(_ context.Context, id primitive.ObjectID, fields map[string]interface{}) (*restmodels.Restaurant, error) {
	return s.mutate(id, func(r *restmodels.Restaurant) {
		for k, v := range fields {
			str, _ := v.(string)
			switch k {
			case "name":
				r.Name = str
			case "location":
				r.Location = str
			case "logo":
				r.Logo = str
			case "menuLink":
				r.MenuLink = str
			case "orderLink":
				r.OrderLink = str
			}
		}
	})
}

func (s *Restaurants) SetMenu(_ context.Context, id, menuID primitive.ObjectID) error {
	_, err := s.mutate(id, func(r *restmodels.Restaurant) { r.Menu = &menuID })
	return err
}

func (s *Restaurants) AddChat(_ context.Context, id, chatID primitive.ObjectID) error {
	_, err := s.mutate(id, func(r *restmodels.Restaurant) { r.Chats = addID(r.Chats, chatID) })
	return err
}

func (s *Restaurants) AddUserAccess(_ context.Context, id primitive.ObjectID, access authmodels.UserAccess) error {
	_, err := s.mutate(id, func(r *restmodels.Restaurant) {
		if !authmodels.HasAccess(r.UserAccess, access.UserID) {
			r.UserAccess = append(r.UserAccess, access)
		}
	})
	return err
}

func (s *Restaurants) RemoveUserAccess(_ context.Context, id primitive.ObjectID, uid string) error {
	_, err := s.mutate(id, func(r *restmodels.Restaurant) { r.UserAccess = removeAccess(r.UserAccess, uid) })
	return err
}

func (s *Restaurants) TransferOwnership(_ context.Context, id primitive.ObjectID, newOwner authmodels.UserAccess) (*restmodels.Restaurant, error) {
	return s.mutate(id, func(r *restmodels.Restaurant) {
		roster := make([]authmodels.UserAccess, 0, len(r.UserAccess)+1)
		for _, a := range r.UserAccess {
			if a.Role == authmodels.RoleRestaurantMainAdmin || a.UserID == newOwner.UserID {
				continue
			}
			roster = append(roster, a)
		}
		r.UserAccess = append(roster, newOwner)
		r.OwnerID = newOwner.UserID
	})
}

func (s *Restaurants) Delete(_ context.Context, id primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.restaurants[id]; !ok {
		return common.ErrNotFound
	}
	delete(s.db.restaurants, id)
	return nil
}

// ---------- Chatbots ----------

// Chatbots cài đặt store.ChatbotStore
type Chatbots struct{ db *DB }

func cloneChatbot(c *restmodels.Chatbot) *restmodels.Chatbot {
	x := *c
	x.SuggestedQuestions = append([]restmodels.RichTextDocument{}, c.SuggestedQuestions...)
	return &x
}

func (s *Chatbots) Create(_ context.Context, c restmodels.Chatbot) (*restmodels.Chatbot, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.chatbots[c.RestaurantID]; ok {
		return nil, common.ErrMongoDuplicate
	}
	c.ID = primitive.NewObjectID()
	c.CreatedAt, c.UpdatedAt = nowMilli(), nowMilli()
	s.db.chatbots[c.RestaurantID] = cloneChatbot(&c)
	return cloneChatbot(&c), nil
}

func (s *Chatbots) FindByRestaurant(_ context.Context, restaurantID primitive.ObjectID) (*restmodels.Chatbot, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.chatbots[restaurantID]
	if !ok {
		return nil, common.ErrNotFound
	}
	return cloneChatbot(c), nil
}

func (s *Chatbots) Update(_ context.Context, restaurantID primitive.ObjectID, fields map[string]interface{}) (*restmodels.Chatbot, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.chatbots[restaurantID]
	if !ok {
		return nil, common.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "systemPrompt":
			c.SystemPrompt, _ = v.(string)
		case "status":
			c.Status, _ = v.(string)
		case "qrScanOnly":
			c.QRScanOnly, _ = v.(bool)
		case "suggestedQuestions":
			c.SuggestedQuestions, _ = v.([]restmodels.RichTextDocument)
		}
	}
	c.UpdatedAt = nowMilli()
	return cloneChatbot(c), nil
}

func (s *Chatbots) DeleteByRestaurant(_ context.Context, restaurantID primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	delete(s.db.chatbots, restaurantID)
	return nil
}

// ---------- Menus ----------

// Menus cài đặt store.MenuStore
type Menus struct{ db *DB }

func cloneMenu(m *restmodels.Menu) *restmodels.Menu {
	x := *m
	x.MenuItems = append([]restmodels.MenuItem{}, m.MenuItems...)
	return &x
}

func (s *Menus) Create(_ context.Context, m restmodels.Menu) (*restmodels.Menu, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.menus[m.RestaurantID]; ok {
		return nil, common.ErrMongoDuplicate
	}
	m.ID = primitive.NewObjectID()
	if m.MenuItems == nil {
		m.MenuItems = []restmodels.MenuItem{}
	}
	m.CreatedAt, m.UpdatedAt = nowMilli(), nowMilli()
	s.db.menus[m.RestaurantID] = cloneMenu(&m)
	return cloneMenu(&m), nil
}

func (s *Menus) FindByRestaurant(_ context.Context, restaurantID primitive.ObjectID) (*restmodels.Menu, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	m, ok := s.db.menus[restaurantID]
	if !ok {
		return nil, common.ErrNotFound
	}
	return cloneMenu(m), nil
}

func (s *Menus) AddItems(_ context.Context, restaurantID primitive.ObjectID, items []restmodels.MenuItem) (*restmodels.Menu, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	m, ok := s.db.menus[restaurantID]
	if !ok {
		return nil, common.ErrNotFound
	}
	m.MenuItems = append(m.MenuItems, items...)
	m.UpdatedAt = nowMilli()
	return cloneMenu(m), nil
}

func (s *Menus) UpdateItem(_ context.Context, restaurantID, itemID primitive.ObjectID, fields map[string]interface{}) (*restmodels.Menu, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	m, ok := s.db.menus[restaurantID]
	if !ok {
		return nil, common.ErrNotFound
	}
	for i := range m.MenuItems {
		if m.MenuItems[i].ID != itemID {
			continue
		}
		for k, v := range fields {
			switch k {
			case "name":
				m.MenuItems[i].Name, _ = v.(string)
			case "description":
				m.MenuItems[i].Description, _ = v.(string)
			case "price":
				m.MenuItems[i].Price, _ = v.(float64)
			}
		}
		m.UpdatedAt = nowMilli()
		return cloneMenu(m), nil
	}
	return nil, common.ErrNotFound
}

func (s *Menus) DeleteItems(_ context.Context, restaurantID primitive.ObjectID, itemIDs []primitive.ObjectID) (*restmodels.Menu, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	m, ok := s.db.menus[restaurantID]
	if !ok {
		return nil, common.ErrNotFound
	}
	kept := make([]restmodels.MenuItem, 0, len(m.MenuItems))
	for _, it := range m.MenuItems {
		if !containsID(itemIDs, it.ID) {
			kept = append(kept, it)
		}
	}
	m.MenuItems = kept
	m.UpdatedAt = nowMilli()
	return cloneMenu(m), nil
}

func (s *Menus) DeleteByRestaurant(_ context.Context, restaurantID primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	delete(s.db.menus, restaurantID)
	return nil
}

// ---------- Chats ----------

// Chats cài đặt store.ChatStore
type Chats struct{ db *DB }

func cloneChat(c *chatmodels.Chat) *chatmodels.Chat {
	x := *c
	x.Messages = append([]chatmodels.ChatMessage{}, c.Messages...)
	x.SeenBy = append([]string{}, c.SeenBy...)
	return &x
}

func (s *Chats) Create(_ context.Context, c chatmodels.Chat) (*chatmodels.Chat, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c.ID = primitive.NewObjectID()
	if c.Messages == nil {
		c.Messages = []chatmodels.ChatMessage{}
	}
	if c.SeenBy == nil {
		c.SeenBy = []string{}
	}
	c.CreatedAt, c.UpdatedAt = nowMilli(), nowMilli()
	s.db.chats[c.ID] = cloneChat(&c)
	return cloneChat(&c), nil
}

func (s *Chats) FindByID(_ context.Context, id primitive.ObjectID) (*chatmodels.Chat, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.chats[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return cloneChat(c), nil
}

func (s *Chats) FindBySession(_ context.Context, restaurantID primitive.ObjectID, sessionToken string) (*chatmodels.Chat, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, c := range s.db.chats {
		if c.RestaurantID == restaurantID && c.SessionToken == sessionToken {
			return cloneChat(c), nil
		}
	}
	return nil, common.ErrNotFound
}

func (s *Chats) FindLatestByUser(_ context.Context, restaurantID primitive.ObjectID, uid string) (*chatmodels.Chat, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var latest *chatmodels.Chat
	for _, c := range s.db.chats {
		if c.RestaurantID != restaurantID || c.UserID != uid {
			continue
		}
		if latest == nil || c.UpdatedAt > latest.UpdatedAt ||
			(c.UpdatedAt == latest.UpdatedAt && c.ID.Hex() > latest.ID.Hex()) {
			latest = c
		}
	}
	if latest == nil {
		return nil, common.ErrNotFound
	}
	return cloneChat(latest), nil
}

func (s *Chats) ListByRestaurant(_ context.Context, restaurantID primitive.ObjectID, page, limit int64) (*basemodels.PaginateResult[chatmodels.Chat], error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	items := []chatmodels.Chat{}
	for _, c := range s.db.chats {
		if c.RestaurantID == restaurantID {
			items = append(items, *cloneChat(c))
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].UpdatedAt > items[j].UpdatedAt })
	return paginate(items, page, limit), nil
}

func (s *Chats) FindIDsByRestaurant(_ context.Context, restaurantID primitive.ObjectID) ([]primitive.ObjectID, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := []primitive.ObjectID{}
	for id, c := range s.db.chats {
		if c.RestaurantID == restaurantID {
			out = append(out, id)
		}
	}
	return out, nil
}

func (s *Chats) AppendMessage(_ context.Context, id primitive.ObjectID, msg chatmodels.ChatMessage, model string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.chats[id]
	if !ok {
		return common.ErrNotFound
	}
	c.Messages = append(c.Messages, msg)
	if msg.TokenUsage != nil {
		c.TokenUsage.Add(*msg.TokenUsage)
	}
	if model != "" {
		c.Model = model
	}
	c.UpdatedAt = nowMilli()
	return nil
}

func (s *Chats) MarkSeen(_ context.Context, id primitive.ObjectID, uid string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.chats[id]
	if !ok {
		return common.ErrNotFound
	}
	for _, x := range c.SeenBy {
		if x == uid {
			return nil
		}
	}
	c.SeenBy = append(c.SeenBy, uid)
	return nil
}

func (s *Chats) DeleteByRestaurant(_ context.Context, restaurantID primitive.ObjectID) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var n int64
	for id, c := range s.db.chats {
		if c.RestaurantID == restaurantID {
			delete(s.db.chats, id)
			n++
		}
	}
	return n, nil
}

// ---------- UserChats ----------

// UserChats cài đặt store.UserChatsStore
type UserChats struct{ db *DB }

func (s *UserChats) FindByUser(_ context.Context, uid string) (*chatmodels.UserChats, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	uc, ok := s.db.userChats[uid]
	if !ok {
		return nil, common.ErrNotFound
	}
	x := *uc
	x.Chats = append([]primitive.ObjectID{}, uc.Chats...)
	return &x, nil
}

func (s *UserChats) AddChat(_ context.Context, uid string, chatID primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	uc, ok := s.db.userChats[uid]
	if !ok {
		uc = &chatmodels.UserChats{ID: primitive.NewObjectID(), UserID: uid, Chats: []primitive.ObjectID{}, CreatedAt: nowMilli()}
		s.db.userChats[uid] = uc
	}
	uc.Chats = addID(uc.Chats, chatID)
	uc.UpdatedAt = nowMilli()
	return nil
}

func (s *UserChats) PullChats(_ context.Context, chatIDs []primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, uc := range s.db.userChats {
		uc.Chats = removeIDs(uc.Chats, chatIDs...)
	}
	return nil
}

// ---------- Analytics ----------

// Analytics cài đặt store.AnalyticsStore
type Analytics struct{ db *DB }

func cloneAnalytics(a *restmodels.RestaurantAnalytics) *restmodels.RestaurantAnalytics {
	x := *a
	x.MonthlyStats = append([]restmodels.MonthlyStat{}, a.MonthlyStats...)
	return &x
}

func (s *Analytics) Create(_ context.Context, restaurantID primitive.ObjectID) (*restmodels.RestaurantAnalytics, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.analytics[restaurantID]; ok {
		return nil, common.ErrMongoDuplicate
	}
	a := &restmodels.RestaurantAnalytics{
		ID:           primitive.NewObjectID(),
		RestaurantID: restaurantID,
		MonthlyStats: []restmodels.MonthlyStat{},
		CreatedAt:    nowMilli(),
		UpdatedAt:    nowMilli(),
	}
	s.db.analytics[restaurantID] = a
	return cloneAnalytics(a), nil
}

// PutAnalytics ghi trực tiếp bản analytics (dùng để chuẩn bị dữ liệu test)
func (db *DB) PutAnalytics(a restmodels.RestaurantAnalytics) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	db.analytics[a.RestaurantID] = cloneAnalytics(&a)
}

func (s *Analytics) FindByRestaurant(_ context.Context, restaurantID primitive.ObjectID) (*restmodels.RestaurantAnalytics, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	a, ok := s.db.analytics[restaurantID]
	if !ok {
		return nil, common.ErrNotFound
	}
	return cloneAnalytics(a), nil
}

func (s *Analytics) Record(_ context.Context, restaurantID primitive.ObjectID, delta restmodels.MonthlyStat) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	a, ok := s.db.analytics[restaurantID]
	if !ok {
		return common.ErrNotFound
	}
	found := false
	for i := range a.MonthlyStats {
		m := &a.MonthlyStats[i]
		if m.Year == delta.Year && m.Month == delta.Month {
			m.Chats += delta.Chats
			m.Messages += delta.Messages
			m.PromptTokens += delta.PromptTokens
			m.CompletionTokens += delta.CompletionTokens
			m.TotalTokens += delta.TotalTokens
			found = true
			break
		}
	}
	if !found {
		a.MonthlyStats = append(a.MonthlyStats, delta)
	}
	a.TotalChats += delta.Chats
	a.TotalMessages += delta.Messages
	a.TotalTokens += delta.TotalTokens
	a.UpdatedAt = nowMilli()
	return nil
}

func (s *Analytics) DeleteByRestaurant(_ context.Context, restaurantID primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	delete(s.db.analytics, restaurantID)
	return nil
}

// ---------- Subscription packages ----------

// Packages cài đặt store.SubscriptionPackageStore
type Packages struct{ db *DB }

func (s *Packages) Create(_ context.Context, p submodels.SubscriptionPackage) (*submodels.SubscriptionPackage, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, x := range s.db.packages {
		if x.Name == p.Name {
			return nil, common.ErrMongoDuplicate
		}
	}
	p.ID = primitive.NewObjectID()
	p.CreatedAt, p.UpdatedAt = nowMilli(), nowMilli()
	c := p
	s.db.packages[p.ID] = &c
	return &p, nil
}

func (s *Packages) FindByID(_ context.Context, id primitive.ObjectID) (*submodels.SubscriptionPackage, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	p, ok := s.db.packages[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (s *Packages) FindByName(_ context.Context, name string) (*submodels.SubscriptionPackage, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, p := range s.db.packages {
		if p.Name == name {
			c := *p
			return &c, nil
		}
	}
	return nil, common.ErrNotFound
}

func (s *Packages) List(_ context.Context) ([]submodels.SubscriptionPackage, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := []submodels.SubscriptionPackage{}
	for _, p := range s.db.packages {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Packages) Update(_ context.Context, id primitive.ObjectID, fields map[string]interface{}) (*submodels.SubscriptionPackage, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	p, ok := s.db.packages[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "name":
			p.Name, _ = v.(string)
		case "tokenLimitPerMonth":
			p.TokenLimitPerMonth, _ = v.(int64)
		case "price":
			p.Price, _ = v.(float64)
		case "paymentSchedule":
			p.PaymentSchedule, _ = v.(string)
		}
	}
	p.UpdatedAt = nowMilli()
	c := *p
	return &c, nil
}

func (s *Packages) Delete(_ context.Context, id primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.packages[id]; !ok {
		return common.ErrNotFound
	}
	delete(s.db.packages, id)
	return nil
}

func (s *Packages) EnsureByName(ctx context.Context, p submodels.SubscriptionPackage) (*submodels.SubscriptionPackage, error) {
	if existing, err := s.FindByName(ctx, p.Name); err == nil {
		return existing, nil
	}
	return s.Create(ctx, p)
}

// ---------- Customer subscriptions ----------

// CustomerSubscriptions cài đặt store.CustomerSubscriptionStore
type CustomerSubscriptions struct{ db *DB }

func (s *CustomerSubscriptions) Create(_ context.Context, sub submodels.CustomerSubscription) (*submodels.CustomerSubscription, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	sub.ID = primitive.NewObjectID()
	sub.CreatedAt, sub.UpdatedAt = nowMilli(), nowMilli()
	c := sub
	s.db.subscriptions[sub.ID] = &c
	return &sub, nil
}

func (s *CustomerSubscriptions) FindByID(_ context.Context, id primitive.ObjectID) (*submodels.CustomerSubscription, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	sub, ok := s.db.subscriptions[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	c := *sub
	return &c, nil
}

func (s *CustomerSubscriptions) FindByDashboard(_ context.Context, dashboardID primitive.ObjectID) (*submodels.CustomerSubscription, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, sub := range s.db.subscriptions {
		if sub.DashboardID == dashboardID {
			c := *sub
			return &c, nil
		}
	}
	return nil, common.ErrNotFound
}

func (s *CustomerSubscriptions) List(_ context.Context, page, limit int64) (*basemodels.PaginateResult[submodels.CustomerSubscription], error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	items := []submodels.CustomerSubscription{}
	for _, sub := range s.db.subscriptions {
		items = append(items, *sub)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt > items[j].CreatedAt })
	return paginate(items, page, limit), nil
}

func (s *CustomerSubscriptions) Update(_ context.Context, id primitive.ObjectID, fields map[string]interface{}) (*submodels.CustomerSubscription, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	sub, ok := s.db.subscriptions[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "subscriptionPackageId":
			sub.SubscriptionPackageID, _ = v.(primitive.ObjectID)
		case "startDate":
			sub.StartDate, _ = v.(int64)
		case "endDate":
			sub.EndDate, _ = v.(int64)
		case "nextBillingDate":
			sub.NextBillingDate, _ = v.(int64)
		case "status":
			sub.Status, _ = v.(string)
		case "renewal":
			sub.Renewal, _ = v.(bool)
		}
	}
	sub.UpdatedAt = nowMilli()
	c := *sub
	return &c, nil
}

func (s *CustomerSubscriptions) Delete(_ context.Context, id primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.subscriptions[id]; !ok {
		return common.ErrNotFound
	}
	delete(s.db.subscriptions, id)
	return nil
}

func (s *CustomerSubscriptions) FindDue(_ context.Context, now time.Time) ([]submodels.CustomerSubscription, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := []submodels.CustomerSubscription{}
	for _, sub := range s.db.subscriptions {
		if sub.Status == submodels.SubscriptionActive && sub.EndDate <= now.UnixMilli() {
			out = append(out, *sub)
		}
	}
	return out, nil
}

// ---------- Token usage ----------

// TokenUsages cài đặt store.TokenUsageStore
type TokenUsages struct{ db *DB }

func (s *TokenUsages) getOrCreateLocked(key submodels.TokenUsageKey, tokenLimit int64) *submodels.TokenUsage {
	tu, ok := s.db.tokenUsages[key]
	if !ok {
		tu = &submodels.TokenUsage{
			ID:                     primitive.NewObjectID(),
			RestaurantID:           key.RestaurantID,
			DashboardID:            key.DashboardID,
			CustomerSubscriptionID: key.CustomerSubscriptionID,
			Month:                  key.Month,
			Year:                   key.Year,
			TokenLimit:             tokenLimit,
			CreatedAt:              nowMilli(),
			UpdatedAt:              nowMilli(),
		}
		s.db.tokenUsages[key] = tu
	}
	return tu
}

func (s *TokenUsages) GetOrCreate(_ context.Context, key submodels.TokenUsageKey, tokenLimit int64) (*submodels.TokenUsage, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c := *s.getOrCreateLocked(key, tokenLimit)
	return &c, nil
}

func (s *TokenUsages) Increment(_ context.Context, key submodels.TokenUsageKey, tokenLimit int64, usage submodels.TokenUsageDetails) (*submodels.TokenUsage, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	tu := s.getOrCreateLocked(key, tokenLimit)
	tu.TokenUsageDetails.Add(usage)
	tu.UpdatedAt = nowMilli()
	c := *tu
	return &c, nil
}

func (s *TokenUsages) ListByRestaurant(_ context.Context, restaurantID primitive.ObjectID) ([]submodels.TokenUsage, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := []submodels.TokenUsage{}
	for _, tu := range s.db.tokenUsages {
		if tu.RestaurantID == restaurantID {
			out = append(out, *tu)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Year*12+out[i].Month > out[j].Year*12+out[j].Month
	})
	return out, nil
}

var (
	_ store.UserStore                 = (*Users)(nil)
	_ store.DashboardStore            = (*Dashboards)(nil)
	_ store.RestaurantStore           = (*Restaurants)(nil)
	_ store.ChatbotStore              = (*Chatbots)(nil)
	_ store.MenuStore                 = (*Menus)(nil)
	_ store.ChatStore                 = (*Chats)(nil)
	_ store.UserChatsStore            = (*UserChats)(nil)
	_ store.AnalyticsStore            = (*Analytics)(nil)
	_ store.SubscriptionPackageStore  = (*Packages)(nil)
	_ store.CustomerSubscriptionStore = (*CustomerSubscriptions)(nil)
	_ store.TokenUsageStore           = (*TokenUsages)(nil)
)
