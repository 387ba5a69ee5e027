package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Configuration chứa thông tin tĩnh cần thiết để chạy ứng dụng
type Configuration struct {
	Address               string `env:"ADDRESS" envDefault:":8080"`                  // Địa chỉ server
	MongoDB_ConnectionURI string `env:"MONGODB_CONNECTION_URI,required"`             // URL kết nối cơ sở dữ liệu
	MongoDB_DBName        string `env:"MONGODB_DBNAME" envDefault:"talking_menu"`    // Tên cơ sở dữ liệu
	CORS_Origins          string `env:"CORS_ORIGINS" envDefault:"*"`                 // Các origins được phép (phân cách bởi dấu phẩy, * = tất cả)
	CORS_AllowCredentials bool   `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"`   // Cho phép gửi credentials
	RateLimit_Max         int    `env:"RATE_LIMIT_MAX" envDefault:"100"`             // Số request tối đa trong window
	RateLimit_Window      int    `env:"RATE_LIMIT_WINDOW" envDefault:"60"`           // Thời gian window (giây)
	RateLimit_Enabled     bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`        // Bật/tắt rate limiting
	FrontendURL           string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"` // URL frontend (dùng trong email)

	// Xác thực: "firebase" (mặc định) hoặc "local" (JWT HS256, dùng khi dev/test)
	AuthProvider            string `env:"AUTH_PROVIDER" envDefault:"firebase"`
	JwtSecret               string `env:"JWT_SECRET"`                // Bí mật JWT cho AUTH_PROVIDER=local
	FirebaseProjectID       string `env:"FIREBASE_PROJECT_ID"`       // Firebase Project ID
	FirebaseCredentialsPath string `env:"FIREBASE_CREDENTIALS_PATH"` // Đường dẫn đến service account JSON
	PlatformAdminUID        string `env:"PLATFORM_ADMIN_UID"`        // UID được gán talking_menu_admin khi khởi động

	// OpenAI
	OpenAI_APIKey         string `env:"OPENAI_API_KEY"`
	OpenAI_BaseURL        string `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	OpenAI_Model          string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	OpenAI_TimeoutSeconds int    `env:"OPENAI_TIMEOUT_SECONDS" envDefault:"120"`
	OpenAI_HistoryLimit   int    `env:"OPENAI_HISTORY_LIMIT" envDefault:"30"` // Số message gần nhất gửi lên LLM

	// Redis (tùy chọn): khóa theo chat cho chatbot relay
	RedisAddr          string `env:"REDIS_ADDR"`
	RedisPassword      string `env:"REDIS_PASSWORD"`
	RedisDB            int    `env:"REDIS_DB" envDefault:"0"`
	ChatLockTTLSeconds int    `env:"CHAT_LOCK_TTL_SECONDS" envDefault:"120"`

	// SMTP (tùy chọn): gửi email thông báo khi cấp quyền nhân viên
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM"`

	// Subscription
	SubscriptionPackagesFile  string `env:"SUBSCRIPTION_PACKAGES_FILE"`                                  // File YAML chứa gói mặc định
	SubscriptionWorkerEnabled bool   `env:"SUBSCRIPTION_WORKER_ENABLED" envDefault:"true"`
	SubscriptionWorkerCron    string `env:"SUBSCRIPTION_WORKER_SCHEDULE" envDefault:"@every 1h"` // Lịch chạy worker (cú pháp robfig/cron)
}

// CORSOrigins trả về danh sách origin đã tách
func (c *Configuration) CORSOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORS_Origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// getEnvPath trả về đường dẫn đến file env dựa trên môi trường
func getEnvPath() string {
	// Mặc định sử dụng môi trường development
	goEnv := os.Getenv("GO_ENV")
	if goEnv == "" {
		goEnv = "development"
	}

	currentDir, err := os.Getwd()
	if err != nil {
		// Sử dụng fmt.Printf vì logger có thể chưa được init ở đây
		fmt.Printf("Không thể lấy được thư mục hiện tại: %v\n", err)
		return ""
	}

	// Tìm thư mục config/env, đi ngược lên thư mục cha
	for {
		envDir := filepath.Join(currentDir, "config", "env")
		if _, err := os.Stat(envDir); err == nil {
			return filepath.Join(envDir, fmt.Sprintf("%s.env", goEnv))
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return ""
		}
		currentDir = parentDir
	}
}

// NewConfig đọc cấu hình từ file env (nếu có) và biến môi trường.
// Biến môi trường đã set sẵn được ưu tiên hơn giá trị trong file.
func NewConfig(files ...string) (*Configuration, error) {
	if len(files) == 0 {
		if envPath := getEnvPath(); envPath != "" {
			files = append(files, envPath)
		}
	}

	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			fmt.Printf("Bỏ qua file env %s: %v\n", f, err)
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("không thể load file env tại %s: %w", f, err)
		}
	}

	cfg := Configuration{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("lỗi khi parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Configuration) validate() error {
	switch c.AuthProvider {
	case "firebase":
	case "local":
		if c.JwtSecret == "" {
			return fmt.Errorf("JWT_SECRET là bắt buộc khi AUTH_PROVIDER=local")
		}
	default:
		return fmt.Errorf("AUTH_PROVIDER không hợp lệ: %q", c.AuthProvider)
	}
	return nil
}
