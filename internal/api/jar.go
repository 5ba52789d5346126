package api

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// storedCookie is the on-disk shape of one jar entry.
type storedCookie struct {
	Name    string    `json:"name"`
	Value   string    `json:"value"`
	Path    string    `json:"path,omitempty"`
	Expires time.Time `json:"expires,omitempty"`
	SavedAt time.Time `json:"savedAt"`
}

// SaveCookies persists the jar entries for the backend host so a restart
// does not force a fresh login. An empty path disables persistence.
func (c *Client) SaveCookies(path string) error {
	if path == "" {
		return nil
	}
	cookies := c.http.Jar.Cookies(c.baseURL)
	if len(cookies) == 0 {
		log.Printf("No backend cookies to save, skipping %s", path)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		log.Printf("Failed to create cookie directory: %v", err)
		return err
	}

	now := time.Now()
	stored := make([]storedCookie, 0, len(cookies))
	for _, ck := range cookies {
		stored = append(stored, storedCookie{
			Name:    ck.Name,
			Value:   ck.Value,
			Path:    ck.Path,
			Expires: ck.Expires,
			SavedAt: now,
		})
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		log.Printf("Failed to write cookie file %s: %v", path, err)
		return err
	}
	log.Printf("Saved %d backend cookie(s) to %s", len(stored), path)
	return nil
}

// LoadCookies restores previously saved jar entries. Files older than maxAge
// or unreadable are removed and ignored, the same way a browser drops an
// expired session cookie.
func (c *Client) LoadCookies(path string, maxAge time.Duration) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if age := time.Since(info.ModTime()); age > maxAge {
		log.Printf("Cookie file is too old (%v, max: %v), removing: %s", age, maxAge, path)
		os.Remove(path)
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var stored []storedCookie
	if err := json.Unmarshal(data, &stored); err != nil {
		log.Printf("Cookie file %s is corrupted, removing: %v", path, err)
		os.Remove(path)
		return nil
	}

	now := time.Now()
	restored := 0
	for _, sc := range stored {
		if !sc.Expires.IsZero() && sc.Expires.Before(now) {
			continue
		}
		c.http.Jar.SetCookies(c.baseURL, []*http.Cookie{{
			Name:    sc.Name,
			Value:   sc.Value,
			Path:    sc.Path,
			Expires: sc.Expires,
		}})
		restored++
	}
	log.Printf("Restored %d backend cookie(s) from %s", restored, path)
	return nil
}
