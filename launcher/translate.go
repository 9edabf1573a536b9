package launcher

import "github.com/kingrea/bootstrap/internal/failure"

// Translate sorts a failure coming out of a launch. Application failures are
// re-raised with the value the application panicked with, untouched;
// launcher failures are returned for the caller to report.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	if app, ok := failure.AsApplication(err); ok {
		panic(app.Value)
	}
	return err
}
