package scrape

import "context"

// Driver fetches the body behind a URL. Implementations must be safe
// for concurrent use; the daemon runs jobs in parallel over one driver.
type Driver interface {
	Get(ctx context.Context, url string, headers map[string]string) (string, error)
}

// DriverFunc adapts a function to the Driver interface.
type DriverFunc func(ctx context.Context, url string, headers map[string]string) (string, error)

func (f DriverFunc) Get(ctx context.Context, url string, headers map[string]string) (string, error) {
	return f(ctx, url, headers)
}

// StaticDriver serves the same body for every URL. The book example
// harness uses it to feed chapter inputs through real scripts.
func StaticDriver(body string) Driver {
	return DriverFunc(func(context.Context, string, map[string]string) (string, error) {
		return body, nil
	})
}

// NullDriver returns an empty body for every URL.
type NullDriver struct{}

func (NullDriver) Get(context.Context, string, map[string]string) (string, error) {
	return "", nil
}
