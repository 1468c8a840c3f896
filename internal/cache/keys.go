package cache

import "fmt"

// Owner-qualified keys for client-session state. Both are advisory and safe
// to lose without corrupting durable rows.

func CartKey(owner string) string {
	return fmt.Sprintf("cart:%s", owner)
}

func SessionKey(owner string) string {
	return fmt.Sprintf("session:%s", owner)
}
