package resistorchecker

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"
	"github.com/zaki1905/phy132-resistor-checker/internal/util"
)

type ResistorCheckerService struct {
	// embedded web server that receives submissions from the class form page
	e *echo.Echo
	// the unique name of this service when running multiple instances
	serviceName string
	// the unique id of this service when running multiple instances
	serviceID string
	// the host address this service instance is running on
	serviceHost string
	// the port that this service instance is running on
	servicePort int
	// instructor-measured reference data submissions are graded against
	catalog *Catalog
	// path the catalog was loaded from, empty for the built-in table
	catalogFile string
	// tolerance bands and physics constants used for grading
	grading GradeConfig
	// url of the apps-script webhook that records submissions, empty to disable
	webhookURL string
	// how long to wait on the webhook before giving up
	webhookTimeout time.Duration
	// spreadsheet client, nil when no webhook is configured
	logbook *Logbook
}

//
// A student submission as posted by the class form.
// Values can be provided as json payload, via form components
// or as query params.
//
type Submission struct {
	// student name, optional but recommended so credit can be assigned
	StudentName string `json:"name" form:"name" query:"name"`
	// student email, optional
	StudentEmail string `json:"email" form:"email" query:"email"`
	// the number on the assigned resistor's bag
	ResistorNumber int `json:"resistorNumber" form:"resistorNumber" query:"resistorNumber"`
	// measured resistance in ohms (not kilo-ohms)
	MeasuredOhms float64 `json:"measuredOhms" form:"measuredOhms" query:"measuredOhms"`
	// maximum safe voltage in volts, derived from the power rating
	MaxVolts float64 `json:"maxVolts" form:"maxVolts" query:"maxVolts"`
	// current at the supply voltage, in amps (not milliamps)
	CurrentAmps float64 `json:"currentAmps" form:"currentAmps" query:"currentAmps"`
	// power at the supply voltage, in watts
	PowerWatts float64 `json:"powerWatts" form:"powerWatts" query:"powerWatts"`
}

//
// sanity-check a bound submission before grading. unit conversions are
// the form page's job, here the four values just have to be finite and
// not negative.
//
func (sub *Submission) validate() error {

	if sub.ResistorNumber < 1 {
		return errors.New("must supply a resistor number of 1 or above")
	}

	values := []struct {
		name  string
		value float64
	}{
		{"measuredOhms", sub.MeasuredOhms},
		{"maxVolts", sub.MaxVolts},
		{"currentAmps", sub.CurrentAmps},
		{"powerWatts", sub.PowerWatts},
	}
	for _, v := range values {
		if math.IsNaN(v.value) || math.IsInf(v.value, 0) {
			return errors.Errorf("%s must be a finite number", v.name)
		}
		if v.value < 0 {
			return errors.Errorf("%s must be zero or above", v.name)
		}
	}

	return nil
}

//
// create a new service instance
//
func New(options ...Option) (*ResistorCheckerService, error) {

	srvc := ResistorCheckerService{
		grading: DefaultGradeConfig(),
	}

	if err := srvc.setOptions(options...); err != nil {
		return nil, err
	}

	// anything not covered by an option gets the lab defaults
	if srvc.catalog == nil {
		srvc.catalog = DefaultCatalog()
	}
	if srvc.webhookURL != "" {
		srvc.logbook = NewLogbook(srvc.webhookURL, srvc.webhookTimeout)
	}

	srvc.e = echo.New()
	srvc.e.Logger.SetLevel(log.INFO)
	// the class form page is hosted elsewhere and posts cross-origin
	srvc.e.Use(middleware.CORS())
	// add pingable method to know we're up
	srvc.e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, "OK")
	})
	// reference info for an assigned resistor
	srvc.e.GET("/resistor/:number", srvc.buildResistorHandler())
	// add the grading method
	srvc.e.POST("/check", srvc.buildCheckHandler())

	return &srvc, nil
}

//
// start the service running
//
func (s *ResistorCheckerService) Start() {

	address := fmt.Sprintf("%s:%d", s.serviceHost, s.servicePort)
	go func(addr string) {
		if err := s.e.Start(addr); err != nil {
			s.e.Logger.Info("error starting server: ", err, ", shutting down...")
			// attempt clean shutdown by raising sig int
			p, _ := os.FindProcess(os.Getpid())
			p.Signal(os.Interrupt)
		}
	}(address)

}

//
// serves the measured reference for one resistor number so the form
// page can show what a submission will be checked against
//
func (s *ResistorCheckerService) buildResistorHandler() echo.HandlerFunc {

	catalog := s.catalog
	grading := s.grading

	return func(c echo.Context) error {
		number, err := strconv.Atoi(c.Param("number"))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "resistor number must be an integer")
		}

		rec, err := catalog.Lookup(number)
		if err != nil {
			return echo.NewHTTPError(http.StatusNotFound,
				fmt.Sprintf("resistor %d is not in the catalog", number))
		}

		return c.JSON(http.StatusOK, map[string]interface{}{
			"resistorNumber": rec.Number,
			"nominalOhms":    rec.NominalOhms,
			"referenceOhms":  rec.MeasuredOhms,
			"ratingWatts":    effectiveRating(rec, grading),
		})
	}
}

//
// creates the main grading method
// requires an input of request variables (json, form or query)
// resistorNumber: the number on the assigned resistor's bag
// measuredOhms/maxVolts/currentAmps/powerWatts: the student's values
//
// grading always completes before the spreadsheet append is attempted;
// a webhook failure only changes the advisory fields of the response
//
func (s *ResistorCheckerService) buildCheckHandler() echo.HandlerFunc {

	catalog := s.catalog
	grading := s.grading
	logbook := s.logbook
	sName := s.serviceName
	sID := s.serviceID

	return func(c echo.Context) error {
		defer util.TimeTrack(time.Now(), "check submission")

		// check required params are in input
		sub := &Submission{}
		if err := c.Bind(sub); err != nil {
			fmt.Println("bind error: ", err)
			return echo.NewHTTPError(http.StatusBadRequest, err)
		}
		if err := sub.validate(); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}

		// unknown resistor numbers halt here, nothing is graded
		rec, err := catalog.Lookup(sub.ResistorNumber)
		if err != nil {
			return echo.NewHTTPError(http.StatusNotFound,
				fmt.Sprintf("resistor %d is not in the catalog, check the number on your bag", sub.ResistorNumber))
		}

		result, err := GradeSubmission(rec, *sub, grading)
		if err != nil {
			// only reachable with a broken catalog record, not a bad submission
			c.Logger().Error("grading error: ", err)
			return echo.NewHTTPError(http.StatusInternalServerError,
				"cannot grade against this resistor record, please notify your instructor")
		}

		submissionID := util.GenerateID()

		// verdicts are final from here on, the append is courtesy only
		recorded := false
		note := ""
		if logbook == nil {
			note = "submission logging is not configured, your check ran but was not recorded"
		} else {
			entry := NewLogEntry(submissionID, *sub, rec, result, grading)
			status, body, err := logbook.Append(entry)
			if err != nil {
				fmt.Println("logging error: ", err)
				note = fmt.Sprintf("logging issue encountered (status %d: %s) - your check ran fine, please try again soon or notify your instructor",
					status, body)
			} else {
				recorded = true
			}
		}

		checkResponse := map[string]interface{}{
			"submissionID":   submissionID,
			"resistorNumber": rec.Number,
			"referenceOhms":  rec.MeasuredOhms,
			"supplyVolts":    grading.SupplyVolts,
			"checks": map[string]QuantityCheck{
				"resistance":      result.Resistance,
				"maxVoltage":      result.MaxVoltage,
				"currentAtSupply": result.Current,
				"powerAtSupply":   result.Power,
			},
			"result":             result.Overall,
			"recorded":           recorded,
			"checkerServiceID":   sID,
			"checkerServiceName": sName,
		}
		if note != "" {
			checkResponse["recordingNote"] = note
		}

		return c.JSON(http.StatusOK, checkResponse)
	}
}

//
// shut the server down gracefully
//
func (s *ResistorCheckerService) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.e.Shutdown(ctx); err != nil {
		fmt.Println("could not shut down server cleanly: ", err)
		s.e.Logger.Fatal(err)
	}

}

func (s *ResistorCheckerService) PrintConfig() {

	fmt.Println("\n\tResistor Checker Service Configuration")
	fmt.Print("\t--------------------------------------\n\n")

	s.printID()
	s.printCatalogConfig()
	s.printGradingConfig()
	s.printWebhookConfig()

}

func (s *ResistorCheckerService) printID() {
	fmt.Println("\tservice name:\t\t", s.serviceName)
	fmt.Println("\tservice ID:\t\t", s.serviceID)
	fmt.Println("\tservice host:\t\t", s.serviceHost)
	fmt.Println("\tservice port:\t\t", s.servicePort)
}

func (s *ResistorCheckerService) printCatalogConfig() {
	source := "built-in"
	if s.catalogFile != "" {
		source = s.catalogFile
	}
	fmt.Println("\tcatalog source:\t\t", source)
	numbers := s.catalog.Numbers()
	if len(numbers) > 0 {
		fmt.Printf("\tresistors measured:\t %d (numbers %d-%d)\n", s.catalog.Len(), numbers[0], numbers[len(numbers)-1])
	}
}

func (s *ResistorCheckerService) printGradingConfig() {
	fmt.Println("\tsupply voltage:\t\t", s.grading.SupplyVolts, "V")
	fmt.Println("\tbatch power rating:\t", s.grading.RatingWatts, "W")
	t := s.grading.Tolerances
	fmt.Printf("\ttolerances pct:\t\t R %g | Vmax %g | I %g | P %g\n", t.Resistance, t.MaxVoltage, t.Current, t.Power)
	fmt.Println("\talmost multiplier:\t", s.grading.AlmostMultiplier)
}

func (s *ResistorCheckerService) printWebhookConfig() {
	if s.webhookURL == "" {
		fmt.Println("\tsubmission webhook:\t (not set - submissions will not be recorded)")
		return
	}
	// display only a partial url, the deployment path is effectively a secret
	urlParts := strings.Split(s.webhookURL, "/")
	partialURL := urlParts[len(urlParts)-1]
	if len(urlParts) > 2 {
		partialURL = urlParts[2] + "/.../" + partialURL
	}
	fmt.Println("\tsubmission webhook:\t", partialURL)
	fmt.Println("\twebhook timeout:\t", s.webhookTimeout)
}
