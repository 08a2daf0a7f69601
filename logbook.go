package resistorchecker

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/zaki1905/phy132-resistor-checker/internal/util"
)

// the spreadsheet append did not happen - the webhook was unreachable,
// timed out or answered with a non-ok status. never fatal: the graded
// verdicts have already been produced by the time this can occur.
var ErrLogUnavailable = errors.New("submission logging unavailable")

const (
	// tab name the apps-script handler files submissions under
	logSheetName = "Resistor_Submissions"
	// timestamp layout the spreadsheet expects
	logTimeLayout = "2006-01-02 15:04:05"
	// how long to wait on the webhook before giving up
	DefaultWebhookTimeout = 8 * time.Second
)

//
// one row for the class spreadsheet. field names are the column keys
// the existing apps-script handler maps, so they follow the sheet
// rather than go naming and must not change. the I120/P120 columns
// record values at whatever supply voltage the service is running
// with, 120 V in the standard lab setup.
//
type LogEntry struct {
	Timestamp      string        `json:"timestamp"`
	Sheet          string        `json:"sheet"`
	SubmissionID   string        `json:"submission_id"`
	Name           string        `json:"name"`
	Email          string        `json:"email"`
	ResistorNumber int           `json:"resistor_number"`
	RRefOhm        float64       `json:"R_ref_ohm"`
	RStudentOhm    float64       `json:"R_student_ohm"`
	VmaxV          float64       `json:"Vmax_V"`
	I120VA         float64       `json:"I_120V_A"`
	P120VW         float64       `json:"P_120V_W"`
	VmaxExpV       float64       `json:"Vmax_exp_V"`
	I120ExpA       float64       `json:"I120_exp_A"`
	P120ExpW       float64       `json:"P120_exp_W"`
	TolerancesPct  logTolerances `json:"tolerances_pct"`
	Result         Result        `json:"result"`
}

// tolerance keys as the sheet knows them
type logTolerances struct {
	R    float64 `json:"R"`
	Vmax float64 `json:"Vmax"`
	I120 float64 `json:"I120"`
	P120 float64 `json:"P120"`
}

//
// assemble the spreadsheet row for a graded submission.
// submissionID is the receipt id also returned to the student, so a
// row can be traced back when a grade is queried.
//
func NewLogEntry(submissionID string, sub Submission, rec Record, result GradeResult, cfg GradeConfig) LogEntry {

	return LogEntry{
		Timestamp:      time.Now().Format(logTimeLayout),
		Sheet:          logSheetName,
		SubmissionID:   submissionID,
		Name:           sub.StudentName,
		Email:          sub.StudentEmail,
		ResistorNumber: rec.Number,
		RRefOhm:        rec.MeasuredOhms,
		RStudentOhm:    sub.MeasuredOhms,
		VmaxV:          sub.MaxVolts,
		I120VA:         sub.CurrentAmps,
		P120VW:         sub.PowerWatts,
		VmaxExpV:       result.MaxVoltage.Expected,
		I120ExpA:       result.Current.Expected,
		P120ExpW:       result.Power.Expected,
		TolerancesPct: logTolerances{
			R:    cfg.Tolerances.Resistance,
			Vmax: cfg.Tolerances.MaxVoltage,
			I120: cfg.Tolerances.Current,
			P120: cfg.Tolerances.Power,
		},
		Result: result.Overall,
	}
}

//
// client for the apps-script webhook that appends graded submissions to
// the class spreadsheet. one POST per submission, bounded by the client
// timeout, no retries and no queueing - the webhook is a courtesies-only
// collaborator, grading never depends on it.
//
type Logbook struct {
	url    string
	client *http.Client
}

//
// create a logbook posting to the given webhook url. a non-positive
// timeout falls back to the default.
//
func NewLogbook(url string, timeout time.Duration) *Logbook {

	if timeout <= 0 {
		timeout = DefaultWebhookTimeout
	}

	return &Logbook{
		url:    url,
		client: util.NewNetClient(timeout),
	}
}

//
// post one entry to the webhook.
// returns the collaborator's status code and response text for the
// advisory note shown to the student; status is -1 and the text carries
// the failure reason when the POST never completed. the error wraps
// ErrLogUnavailable for anything other than a 200 answer.
//
func (l *Logbook) Append(entry LogEntry) (int, string, error) {

	payload, err := json.Marshal(entry)
	if err != nil {
		return -1, err.Error(), errors.Wrapf(ErrLogUnavailable, "cannot marshal log entry: %v", err)
	}

	// set default request headers
	headers := map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
		"Connection":   "keep-alive",
	}

	status, body, err := util.Fetch(l.client, "POST", l.url, headers, bytes.NewBuffer(payload))
	if err != nil {
		return -1, err.Error(), errors.Wrapf(ErrLogUnavailable, "%v", err)
	}
	if status != http.StatusOK {
		return status, string(body), errors.Wrapf(ErrLogUnavailable, "webhook answered status %d", status)
	}

	return status, string(body), nil
}
