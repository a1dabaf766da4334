package middleware

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
)

// FlashCookie carries a one-shot notice across a redirect.
const FlashCookie = "flash"

func SetFlash(c *fiber.Ctx, notice string) {
	c.Cookie(&fiber.Cookie{
		Name:     FlashCookie,
		Value:    url.QueryEscape(notice),
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// PopFlash returns and clears the pending notice.
func PopFlash(c *fiber.Ctx) string {
	raw := c.Cookies(FlashCookie)
	if raw == "" {
		return ""
	}
	c.ClearCookie(FlashCookie)
	notice, err := url.QueryUnescape(raw)
	if err != nil {
		return ""
	}
	return notice
}

// RedirectWithNotice is a 303 to location carrying notice to the next page.
func RedirectWithNotice(c *fiber.Ctx, location, notice string) error {
	SetFlash(c, notice)
	return c.Redirect(location, fiber.StatusSeeOther)
}
