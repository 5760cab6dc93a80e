package finder

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/sakif/frelance/internal/model"
)

// wireJob is a job as the model writes it. The model is loose with types:
// scores arrive as 87, 87.5 or "87%", ratings as 4.5 or "4.5/5". The outer
// fields shadow the embedded ones of the same JSON name.
type wireJob struct {
	model.Job
	MatchPercentage looseNumber `json:"matchPercentage"`
	CompanyRating   looseString `json:"companyRating"`
}

func (w wireJob) job() model.Job {
	j := w.Job
	j.MatchPercentage = int(math.Round(float64(w.MatchPercentage)))
	j.CompanyRating = string(w.CompanyRating)
	return j
}

// looseNumber accepts a JSON number or a string holding one, with an
// optional trailing percent sign. Anything else decodes as 0.
type looseNumber float64

func (n *looseNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}

	text := string(data)
	if strings.HasPrefix(text, `"`) {
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), "%")
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		*n = 0
		return nil
	}
	*n = looseNumber(f)
	return nil
}

// looseString accepts a JSON string, number or boolean and keeps its text.
// Objects and arrays decode as empty.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*s = ""
	case bytes.HasPrefix(data, []byte(`"`)):
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = looseString(str)
	case bytes.HasPrefix(data, []byte("{")), bytes.HasPrefix(data, []byte("[")):
		*s = ""
	default:
		*s = looseString(data)
	}
	return nil
}

// decodeJobs decodes a JSON array of jobs.
func decodeJobs(data []byte) ([]model.Job, error) {
	var wire []wireJob
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, err
	}
	return toJobs(wire), nil
}

func toJobs(wire []wireJob) []model.Job {
	jobs := make([]model.Job, 0, len(wire))
	for _, w := range wire {
		jobs = append(jobs, w.job())
	}
	return jobs
}
