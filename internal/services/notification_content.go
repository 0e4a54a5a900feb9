package services

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/Dias221467/food-expiry-tracker/internal/models"
	"github.com/Dias221467/food-expiry-tracker/pkg/email"
)

var alertEmailTemplate = template.Must(template.New("alert").Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
      <h1>🌱 FoodWaste Tracker Alert</h1>
      <h2>{{.Subject}}</h2>
      <p>Hello {{.UserName}},</p>
      <p>{{.Text}}</p>
      <h3>Item Details:</h3>
      <p><strong>Name:</strong> {{.Item.Name}}</p>
      <p><strong>Category:</strong> {{.Item.Category}}</p>
      <p><strong>Quantity:</strong> {{.Item.Quantity}} {{.Item.Unit}}</p>
      <p><strong>Expiry Date:</strong> {{.Expiry}}</p>
      {{if .Item.EstimatedPrice}}<p><strong>Estimated Price:</strong> {{.Price}}</p>{{end}}
      <p><a href="{{.DashboardURL}}">View Dashboard</a></p>
      <p style="color: #666; font-size: 12px;">You can manage your notification preferences in Settings.</p>
    </div>
  </body>
</html>`))

func alertHeadline(name string, days int) (subject, text string) {
	switch {
	case days == 0:
		return fmt.Sprintf("🚨 %s expires TODAY!", name),
			fmt.Sprintf("Your item %q expires today! Please use it soon to avoid waste.", name)
	case days < 0:
		return fmt.Sprintf("⚠️ %s has expired", name),
			fmt.Sprintf("Your item %q expired %d day(s) ago.", name, -days)
	case days == 1:
		return fmt.Sprintf("⏰ %s expires tomorrow", name),
			fmt.Sprintf("Your item %q expires tomorrow. Don't forget to use it!", name)
	default:
		return fmt.Sprintf("📅 %s expires in %d days", name, days),
			fmt.Sprintf("Your item %q will expire in %d days. Plan to use it soon!", name, days)
	}
}

func alertEmail(user *models.User, item *models.Item, days int, frontendURL string) email.Message {
	subject, text := alertHeadline(item.Name, days)

	var html bytes.Buffer
	err := alertEmailTemplate.Execute(&html, map[string]any{
		"Subject":      subject,
		"Text":         text,
		"UserName":     user.Name,
		"Item":         item,
		"Expiry":       item.ExpiryDate.Format("Jan 2, 2006"),
		"Price":        fmt.Sprintf("%.2f", item.Price()),
		"DashboardURL": strings.TrimRight(frontendURL, "/") + "/dashboard",
	})
	msg := email.Message{To: user.Email, Subject: subject, Text: text}
	if err == nil {
		msg.HTML = html.String()
	}
	return msg
}

func alertWhatsApp(item *models.Item, days int) string {
	subject, text := alertHeadline(item.Name, days)
	return fmt.Sprintf("*%s*\n\n%s\n\n📅 Expiry: %s\n📦 Quantity: %g %s\n\nVisit your dashboard for recipe suggestions!",
		subject, text, item.ExpiryDate.Format("Jan 2, 2006"), item.Quantity, item.Unit)
}

func testEmail(user *models.User) email.Message {
	return email.Message{
		To:      user.Email,
		Subject: "✅ FoodWaste Tracker test email",
		Text:    fmt.Sprintf("Hello %s, email notifications are working. You will receive alerts when your items are about to expire.", user.Name),
	}
}

func testWhatsApp(user *models.User) string {
	return fmt.Sprintf("✅ *FoodWaste Tracker*\n\nHello %s, WhatsApp notifications are working. You will receive alerts when your items are about to expire.", user.Name)
}
