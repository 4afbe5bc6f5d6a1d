package email

import (
	"fmt"
	"html"
	"strings"
)

// ShopWelcome is what the welcome mail shows about a new shop
type ShopWelcome struct {
	ID       string
	Name     string
	Category string
	Location string
	URL      string
}

// BuildShopWelcomeBody builds the HTML body for the new shop email
func BuildShopWelcomeBody(shop ShopWelcome) string {
	var details strings.Builder
	for _, row := range [][2]string{
		{"Shop", shop.Name},
		{"Category", shop.Category},
		{"Location", shop.Location},
	} {
		if row[1] == "" {
			continue
		}
		details.WriteString(fmt.Sprintf(
			`<tr>
				<td style="padding: 8px 12px; border-bottom: 1px solid #eee; color: #666;">%s</td>
				<td style="padding: 8px 12px; border-bottom: 1px solid #eee;">%s</td>
			</tr>`,
			row[0],
			html.EscapeString(row[1]),
		))
	}

	link := ""
	if shop.URL != "" {
		link = fmt.Sprintf(`<p style="text-align: center; margin: 30px 0;">
			<a href="%s" style="background: #667eea; color: white; padding: 12px 24px; border-radius: 6px; text-decoration: none;">Visit your shop</a>
		</p>`, html.EscapeString(shop.URL))
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: linear-gradient(135deg, #667eea 0%%, #764ba2 100%%); padding: 30px; border-radius: 10px 10px 0 0;">
		<h1 style="color: white; margin: 0; font-size: 24px;">Welcome to SuperMall</h1>
	</div>

	<div style="background: #fff; padding: 30px; border: 1px solid #eee; border-top: none; border-radius: 0 0 10px 10px;">
		<p style="margin-top: 0;">Your shop has been created and is visible in the mall directory.</p>
		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			%s
		</table>
		%s
		<p style="color: #999; font-size: 12px; margin-bottom: 0;">Shop ID: %s</p>
	</div>
</body>
</html>`, details.String(), link, html.EscapeString(shop.ID))
}
