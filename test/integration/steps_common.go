package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/cucumber/godog"
)

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc           *TestContext
	response     *http.Response
	responseBody []byte
	remembered   map[string]string
	raceStatuses []int
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{
		tc:         tc,
		remembered: make(map[string]string),
	}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	// Background steps
	sc.Step(`^the server is running$`, s.theServerIsRunning)

	// Request steps
	sc.Step(`^"([^"]*)" sends (GET|DELETE) to "([^"]*)"$`, s.callerSendsRequest)
	sc.Step(`^"([^"]*)" sends (POST|PUT) to "([^"]*)" with body:$`, s.callerSendsRequestWithBody)
	sc.Step(`^an unauthenticated request is sent to (GET|POST|PUT|DELETE) "([^"]*)"$`, s.unauthenticatedRequest)

	// Response steps
	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, s.theResponseFieldShouldBe)
	sc.Step(`^the response field "([^"]*)" should be present$`, s.theResponseFieldShouldBePresent)
	sc.Step(`^the response list should have (\d+) items?$`, s.theResponseListShouldHaveItems)
	sc.Step(`^item (\d+) of the response list should have "([^"]*)" equal to "([^"]*)"$`, s.responseListItemFieldShouldBe)
	sc.Step(`^I remember the response field "([^"]*)" as "([^"]*)"$`, s.rememberResponseField)

	// Concurrency steps
	sc.Step(`^(\d+) concurrent attempts are made to define the model "([^"]*)"$`, s.concurrentDefineAttempts)
	sc.Step(`^exactly one attempt should succeed and the rest should conflict$`, s.exactlyOneAttemptShouldSucceed)
}

func (s *StepsContext) theServerIsRunning() error {
	// Server is already running via TestContext
	return nil
}

// substitute replaces ${name} placeholders with remembered values.
func (s *StepsContext) substitute(text string) string {
	for name, value := range s.remembered {
		text = strings.ReplaceAll(text, "${"+name+"}", value)
	}
	return text
}

func (s *StepsContext) doRequest(caller, method, path string, body io.Reader) error {
	req, err := http.NewRequest(method, s.tc.ServerURL+s.substitute(path), body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if caller != "" {
		token, err := s.tokenFor(caller)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.tc.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	s.response = resp
	s.responseBody, err = io.ReadAll(resp.Body)
	return err
}

func (s *StepsContext) callerSendsRequest(caller, method, path string) error {
	return s.doRequest(caller, method, path, nil)
}

func (s *StepsContext) callerSendsRequestWithBody(caller, method, path string, body *godog.DocString) error {
	payload := s.substitute(body.Content)
	return s.doRequest(caller, method, path, bytes.NewBufferString(payload))
}

func (s *StepsContext) unauthenticatedRequest(method, path string) error {
	return s.doRequest("", method, path, nil)
}

func (s *StepsContext) theResponseStatusShouldBe(expected int) error {
	if s.response == nil {
		return fmt.Errorf("no response recorded")
	}
	if s.response.StatusCode != expected {
		return fmt.Errorf("expected status %d, got %d (body: %s)", expected, s.response.StatusCode, s.responseBody)
	}
	return nil
}

// lookupField walks a dotted path through the decoded response body.
func (s *StepsContext) lookupField(path string) (any, error) {
	var decoded any
	if err := json.Unmarshal(s.responseBody, &decoded); err != nil {
		return nil, fmt.Errorf("response is not JSON: %w (body: %s)", err, s.responseBody)
	}

	current := decoded
	for _, segment := range strings.Split(path, ".") {
		object, ok := current.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %q: %q is not an object", path, segment)
		}
		current, ok = object[segment]
		if !ok {
			return nil, fmt.Errorf("field %q not found (body: %s)", path, s.responseBody)
		}
	}
	return current, nil
}

func (s *StepsContext) theResponseFieldShouldBe(path, expected string) error {
	value, err := s.lookupField(path)
	if err != nil {
		return err
	}

	actual := fmt.Sprintf("%v", value)
	if actual != s.substitute(expected) {
		return fmt.Errorf("field %q: expected %q, got %q", path, s.substitute(expected), actual)
	}
	return nil
}

func (s *StepsContext) theResponseFieldShouldBePresent(path string) error {
	_, err := s.lookupField(path)
	return err
}

func (s *StepsContext) decodeList() ([]any, error) {
	var list []any
	if err := json.Unmarshal(s.responseBody, &list); err != nil {
		return nil, fmt.Errorf("response is not a JSON list: %w (body: %s)", err, s.responseBody)
	}
	return list, nil
}

func (s *StepsContext) theResponseListShouldHaveItems(count int) error {
	list, err := s.decodeList()
	if err != nil {
		return err
	}
	if len(list) != count {
		return fmt.Errorf("expected %d items, got %d (body: %s)", count, len(list), s.responseBody)
	}
	return nil
}

func (s *StepsContext) responseListItemFieldShouldBe(index int, field, expected string) error {
	list, err := s.decodeList()
	if err != nil {
		return err
	}
	if index >= len(list) {
		return fmt.Errorf("item %d out of range, list has %d items", index, len(list))
	}

	object, ok := list[index].(map[string]any)
	if !ok {
		return fmt.Errorf("item %d is not an object", index)
	}
	actual := fmt.Sprintf("%v", object[field])
	if actual != s.substitute(expected) {
		return fmt.Errorf("item %d field %q: expected %q, got %q", index, field, s.substitute(expected), actual)
	}
	return nil
}

func (s *StepsContext) rememberResponseField(path, name string) error {
	value, err := s.lookupField(path)
	if err != nil {
		return err
	}

	switch v := value.(type) {
	case string:
		s.remembered[name] = v
	case float64:
		s.remembered[name] = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		s.remembered[name] = fmt.Sprintf("%v", v)
	}
	return nil
}

// concurrentDefineAttempts fires identical definition creates in parallel.
// The partial unique index on active table names must let exactly one land.
func (s *StepsContext) concurrentDefineAttempts(count int, name string) error {
	spec := fmt.Sprintf(`{"name": %q, "fields": [{"name": "value", "type": "string"}], "rbac": {"Editor": ["all"]}}`, name)
	token, err := s.tokenFor("admin")
	if err != nil {
		return err
	}

	statuses := make([]int, count)
	var wg sync.WaitGroup
	for i := 0; i < count; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req, err := http.NewRequest("POST", s.tc.ServerURL+"/model-definitions", bytes.NewBufferString(spec))
			if err != nil {
				statuses[i] = -1
				return
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := s.tc.HTTPClient.Do(req)
			if err != nil {
				statuses[i] = -1
				return
			}
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
			statuses[i] = resp.StatusCode
		}(i)
	}
	wg.Wait()

	s.raceStatuses = statuses
	return nil
}

func (s *StepsContext) exactlyOneAttemptShouldSucceed() error {
	created, conflicted := 0, 0
	for _, status := range s.raceStatuses {
		switch status {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicted++
		default:
			return fmt.Errorf("unexpected status %d among %v", status, s.raceStatuses)
		}
	}
	if created != 1 {
		return fmt.Errorf("expected exactly 1 created, got %d (%v)", created, s.raceStatuses)
	}
	if conflicted != len(s.raceStatuses)-1 {
		return fmt.Errorf("expected %d conflicts, got %d (%v)", len(s.raceStatuses)-1, conflicted, s.raceStatuses)
	}
	return nil
}
