package resistorchecker

import (
	"time"

	"github.com/zaki1905/phy132-resistor-checker/internal/util"
)

//
// options set the service configuration when passed to New().
// zero values fall back to something workable - a generated name/id,
// a free port, the lab-sheet grading constants - so a bare flag set
// still produces a runnable service.
//
type Option func(s *ResistorCheckerService) error

// applies all supplied options to the service
func (s *ResistorCheckerService) setOptions(options ...Option) error {
	for _, opt := range options {
		if err := opt(s); err != nil {
			return err
		}
	}
	return nil
}

//
// the name of this service instance, auto-generated if not provided
//
func Name(name string) Option {
	return func(s *ResistorCheckerService) error {
		if name == "" {
			name = util.GenerateName()
		}
		s.serviceName = name
		return nil
	}
}

//
// the unique id of this service instance, auto-generated if not provided
//
func ID(id string) Option {
	return func(s *ResistorCheckerService) error {
		if id == "" {
			id = util.GenerateID()
		}
		s.serviceID = id
		return nil
	}
}

//
// the host address this service runs on
//
func Host(host string) Option {
	return func(s *ResistorCheckerService) error {
		if host == "" {
			host = "localhost"
		}
		s.serviceHost = host
		return nil
	}
}

//
// the port this service runs on, an available port is assigned
// if not provided
//
func Port(port int) Option {
	return func(s *ResistorCheckerService) error {
		if port <= 0 {
			assigned, err := util.AvailablePort()
			if err != nil {
				return err
			}
			port = assigned
		}
		s.servicePort = port
		return nil
	}
}

//
// the apps-script webhook url that submissions are appended through.
// leave empty to run without recording (students are told their check
// was not recorded).
//
func Webhook(url string) Option {
	return func(s *ResistorCheckerService) error {
		s.webhookURL = url
		return nil
	}
}

//
// seconds to wait on the submission webhook before giving up
//
func WebhookTimeout(seconds int) Option {
	return func(s *ResistorCheckerService) error {
		if seconds <= 0 {
			s.webhookTimeout = DefaultWebhookTimeout
			return nil
		}
		s.webhookTimeout = time.Duration(seconds) * time.Second
		return nil
	}
}

//
// path of a catalog json file to grade against instead of the built-in
// measured table
//
func CatalogFile(path string) Option {
	return func(s *ResistorCheckerService) error {
		if path == "" {
			// keep the built-in catalog
			return nil
		}
		c, err := LoadCatalogFile(path)
		if err != nil {
			return err
		}
		s.catalog = c
		s.catalogFile = path
		return nil
	}
}

//
// nominal supply voltage the current and power questions assume
//
func SupplyVolts(volts float64) Option {
	return func(s *ResistorCheckerService) error {
		if volts <= 0 {
			volts = DefaultSupplyVolts
		}
		s.grading.SupplyVolts = volts
		return nil
	}
}

//
// power rating assumed for catalog records that do not carry their own
//
func RatingWatts(watts float64) Option {
	return func(s *ResistorCheckerService) error {
		if watts <= 0 {
			watts = DefaultRatingWatts
		}
		s.grading.RatingWatts = watts
		return nil
	}
}

//
// the percentage acceptance band applied to all four checked quantities
//
func TolerancePercent(pct float64) Option {
	return func(s *ResistorCheckerService) error {
		if pct <= 0 {
			pct = DefaultTolerancePct
		}
		s.grading.Tolerances = UniformTolerances(pct)
		return nil
	}
}

//
// how far beyond the main band a value still counts as close rather
// than mismatch
//
func AlmostMultiplier(mult float64) Option {
	return func(s *ResistorCheckerService) error {
		if mult <= 0 {
			mult = DefaultAlmostMultiplier
		}
		s.grading.AlmostMultiplier = mult
		return nil
	}
}
