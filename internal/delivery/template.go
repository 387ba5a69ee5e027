package delivery

import (
	"fmt"
	"html"
	"strings"

	"talking_menu/internal/delivery/channels"
)

// TemplateCTA là nút bấm của template, Action có thể chứa placeholder
type TemplateCTA struct {
	Label  string
	Action string
	Style  string
}

// Template là thông báo dạng {{variable}}, render bằng payload trước khi đưa vào Queue
type Template struct {
	Subject   string
	Content   string
	Variables []string
	CTAs      []TemplateCTA
}

// Template gửi khi nhân viên được cấp quyền vào một nhà hàng
var EmployeeAccessGranted = Template{
	Subject:   "You now have access to {{restaurantName}}",
	Content:   "<p>You were added to <strong>{{restaurantName}}</strong> on The Talking Menu as <em>{{role}}</em>.</p>",
	Variables: []string{"restaurantName", "role", "baseUrl"},
	CTAs: []TemplateCTA{
		{Label: "Open dashboard", Action: "{{baseUrl}}/dashboard", Style: "primary"},
	},
}

// Template gửi khi nhân viên bị thu hồi quyền
var EmployeeAccessRevoked = Template{
	Subject:   "Your access to {{restaurantName}} was removed",
	Content:   "<p>You no longer have access to <strong>{{restaurantName}}</strong> on The Talking Menu.</p>",
	Variables: []string{"restaurantName"},
}

func replaceVariables(text string, variables []string, payload map[string]interface{}, escape bool) string {
	for _, variable := range variables {
		value, exists := payload[variable]
		if !exists {
			value = ""
		}
		s := fmt.Sprintf("%v", value)
		if escape {
			s = html.EscapeString(s)
		}
		text = strings.ReplaceAll(text, "{{"+variable+"}}", s)
	}
	return text
}

// Render thay placeholder bằng giá trị trong payload (thiếu thì để rỗng).
// CTA có Action rỗng sau khi render (ví dụ chưa cấu hình baseUrl) bị bỏ qua.
func (t Template) Render(payload map[string]interface{}) *channels.RenderedTemplate {
	out := &channels.RenderedTemplate{
		Subject: replaceVariables(t.Subject, t.Variables, payload, false),
		Content: replaceVariables(t.Content, t.Variables, payload, true),
	}
	for _, cta := range t.CTAs {
		action := replaceVariables(cta.Action, t.Variables, payload, false)
		if !strings.HasPrefix(action, "http://") && !strings.HasPrefix(action, "https://") {
			continue
		}
		out.CTAs = append(out.CTAs, channels.RenderedCTA{Label: cta.Label, Action: action, Style: cta.Style})
	}
	return out
}
