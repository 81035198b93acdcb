package web

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
)

const flashCookie = "gatehouse_flash"

// Flash is one message queued for the next rendered page.
type Flash struct {
	Message  string `json:"message"`
	Category string `json:"category"` // info, success, danger
}

func addFlash(c echo.Context, message, category string) {
	flashes := append(readFlashes(c), Flash{Message: message, Category: category})
	raw, _ := json.Marshal(flashes)
	c.SetCookie(&http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		HttpOnly: true,
	})
}

func readFlashes(c echo.Context) []Flash {
	ck, err := c.Cookie(flashCookie)
	if err != nil || ck.Value == "" {
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(ck.Value)
	if err != nil {
		return nil
	}
	var flashes []Flash
	if json.Unmarshal(raw, &flashes) != nil {
		return nil
	}
	return flashes
}

// takeFlashes drains the queue: returns pending messages and clears the cookie.
func takeFlashes(c echo.Context) []Flash {
	flashes := readFlashes(c)
	if flashes != nil {
		c.SetCookie(&http.Cookie{
			Name:     flashCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		})
	}
	return flashes
}
