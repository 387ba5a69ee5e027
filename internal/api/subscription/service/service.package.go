package subsvc

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"gopkg.in/yaml.v3"

	subdto "talking_menu/internal/api/subscription/dto"
	models "talking_menu/internal/api/subscription/models"
	"talking_menu/internal/common"
	"talking_menu/internal/logger"
	"talking_menu/internal/store"
)

// packagesFile là cấu trúc file seed YAML
type packagesFile struct {
	Packages []models.SubscriptionPackage `yaml:"packages"`
}

// LoadPackagesFile đọc danh sách gói từ file YAML. path rỗng thì trả gói mặc định.
func LoadPackagesFile(path string) ([]models.SubscriptionPackage, error) {
	if path == "" {
		return models.DefaultPackages(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read packages file: %w", err)
	}
	var file packagesFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse packages file: %w", err)
	}
	if len(file.Packages) == 0 {
		return nil, fmt.Errorf("packages file %s has no packages", path)
	}
	return file.Packages, nil
}

// CatalogService quản lý gói dịch vụ (chỉ platform admin được sửa)
type CatalogService struct {
	packages store.SubscriptionPackageStore
}

// NewCatalogService tạo CatalogService
func NewCatalogService(packages store.SubscriptionPackageStore) *CatalogService {
	return &CatalogService{packages: packages}
}

// Seed tạo các gói còn thiếu, gói đã có không bị ghi đè
func (s *CatalogService) Seed(ctx context.Context, pkgs []models.SubscriptionPackage) ([]models.SubscriptionPackage, error) {
	out := make([]models.SubscriptionPackage, 0, len(pkgs))
	for _, p := range pkgs {
		saved, err := s.packages.EnsureByName(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("seed package %s: %w", p.Name, err)
		}
		out = append(out, *saved)
	}
	logger.GetAppLogger().WithField("count", len(out)).Info("Subscription packages seeded")
	return out, nil
}

// ResolvePackage trả về gói theo tên (rỗng là basic). Gói mặc định chưa có trong DB sẽ được tạo.
func (s *CatalogService) ResolvePackage(ctx context.Context, name string) (*models.SubscriptionPackage, error) {
	if name == "" {
		name = models.PackageBasic
	}
	pkg, err := s.packages.FindByName(ctx, name)
	if err == nil {
		return pkg, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}
	for _, def := range models.DefaultPackages() {
		if def.Name == name {
			return s.packages.EnsureByName(ctx, def)
		}
	}
	return nil, ErrPackageMissing
}

func (s *CatalogService) List(ctx context.Context) ([]models.SubscriptionPackage, error) {
	return s.packages.List(ctx)
}

func (s *CatalogService) Get(ctx context.Context, id primitive.ObjectID) (*models.SubscriptionPackage, error) {
	return s.packages.FindByID(ctx, id)
}

func (s *CatalogService) Create(ctx context.Context, input *subdto.PackageCreateInput) (*models.SubscriptionPackage, error) {
	return s.packages.Create(ctx, models.SubscriptionPackage{
		Name:               input.Name,
		TokenLimitPerMonth: input.TokenLimitPerMonth,
		Price:              input.Price,
		PaymentSchedule:    input.PaymentSchedule,
	})
}

// Update sửa gói. Record token usage của tháng đang chạy giữ nguyên tokenLimit đã chụp.
func (s *CatalogService) Update(ctx context.Context, id primitive.ObjectID, input *subdto.PackageUpdateInput) (*models.SubscriptionPackage, error) {
	fields := map[string]interface{}{}
	if input.Name != nil {
		fields["name"] = *input.Name
	}
	if input.TokenLimitPerMonth != nil {
		fields["tokenLimitPerMonth"] = *input.TokenLimitPerMonth
	}
	if input.Price != nil {
		fields["price"] = *input.Price
	}
	if input.PaymentSchedule != nil {
		fields["paymentSchedule"] = *input.PaymentSchedule
	}
	if len(fields) == 0 {
		return s.packages.FindByID(ctx, id)
	}
	return s.packages.Update(ctx, id, fields)
}

func (s *CatalogService) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.packages.Delete(ctx, id)
}
