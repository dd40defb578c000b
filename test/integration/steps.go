package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/cucumber/godog"
)

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc           *TestContext
	response     *http.Response
	responseBody []byte
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{tc: tc}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		return ctx, s.tc.Reset()
	})

	// Background steps
	sc.Step(`^a threadly server is running$`, s.aThreadlyServerIsRunning)
	sc.Step(`^a topic "([^"]*)" exists with key "([^"]*)"$`, s.aTopicExistsWithKey)

	// Publish steps
	sc.Step(`^I publish to "([^"]*)" with title "([^"]*)", message "([^"]*)" and key "([^"]*)"$`, s.iPublish)
	sc.Step(`^I publish to "([^"]*)" with title "([^"]*)", message "([^"]*)" and key "([^"]*)" from "([^"]*)"$`, s.iPublishFrom)
	sc.Step(`^I publish (\d+) messages to "([^"]*)" with key "([^"]*)" from "([^"]*)"$`, s.iPublishManyFrom)
	sc.Step(`^I post the body '([^']*)' to the webhook$`, s.iPostTheBody)

	// Response steps
	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^the response should be '([^']*)'$`, s.theResponseShouldBe)

	// Storage steps
	sc.Step(`^topic "([^"]*)" should have (\d+) messages?$`, s.topicShouldHaveMessages)
	sc.Step(`^the newest message of "([^"]*)" should have title "([^"]*)" and body "([^"]*)"$`, s.theNewestMessageShouldBe)
}

func (s *StepsContext) aThreadlyServerIsRunning() error {
	// Server is already running via TestContext
	return nil
}

func (s *StepsContext) aTopicExistsWithKey(name, key string) error {
	_, err := s.tc.Topics.CreateTopic(context.Background(), name, key)
	return err
}

func (s *StepsContext) post(body, forwardedFor string) error {
	req, err := http.NewRequest("POST", s.tc.Server.ServerURL+"/webhook", strings.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
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

func payload(topic, title, message, key string) string {
	b, _ := json.Marshal(map[string]string{
		"topic":   topic,
		"title":   title,
		"message": message,
		"key":     key,
	})
	return string(b)
}

func (s *StepsContext) iPublish(topic, title, message, key string) error {
	return s.post(payload(topic, title, message, key), "")
}

func (s *StepsContext) iPublishFrom(topic, title, message, key, ip string) error {
	return s.post(payload(topic, title, message, key), ip)
}

func (s *StepsContext) iPublishManyFrom(n int, topic, key, ip string) error {
	for i := 0; i < n; i++ {
		if err := s.post(payload(topic, fmt.Sprintf("message %d", i+1), "body", key), ip); err != nil {
			return err
		}
		if s.response.StatusCode != http.StatusOK {
			return fmt.Errorf("publish %d: expected 200, got %d: %s", i+1, s.response.StatusCode, s.responseBody)
		}
	}
	return nil
}

func (s *StepsContext) iPostTheBody(body string) error {
	return s.post(body, "")
}

func (s *StepsContext) theResponseStatusShouldBe(expected int) error {
	if s.response == nil {
		return fmt.Errorf("no response received")
	}
	if s.response.StatusCode != expected {
		return fmt.Errorf("expected status %d, got %d: %s", expected, s.response.StatusCode, s.responseBody)
	}
	return nil
}

func (s *StepsContext) theResponseShouldBe(expected string) error {
	var want, got interface{}
	if err := json.Unmarshal([]byte(expected), &want); err != nil {
		return fmt.Errorf("expected value is not JSON: %w", err)
	}
	if err := json.Unmarshal(bytes.TrimSpace(s.responseBody), &got); err != nil {
		return fmt.Errorf("response is not JSON: %s", s.responseBody)
	}
	if !reflect.DeepEqual(want, got) {
		return fmt.Errorf("expected response %s, got %s", expected, s.responseBody)
	}
	return nil
}

func (s *StepsContext) topicShouldHaveMessages(name string, expected int) error {
	ctx := context.Background()
	topic, err := s.tc.Topics.GetTopicByName(ctx, name)
	if err != nil {
		return err
	}
	messages, err := s.tc.Messages.GetMessagesForTopic(ctx, topic.ID, 0)
	if err != nil {
		return err
	}
	if len(messages) != expected {
		return fmt.Errorf("expected %d messages in %q, found %d", expected, name, len(messages))
	}
	return nil
}

func (s *StepsContext) theNewestMessageShouldBe(name, title, body string) error {
	ctx := context.Background()
	topic, err := s.tc.Topics.GetTopicByName(ctx, name)
	if err != nil {
		return err
	}
	messages, err := s.tc.Messages.GetMessagesForTopic(ctx, topic.ID, 1)
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		return fmt.Errorf("topic %q has no messages", name)
	}
	if messages[0].Title != title || messages[0].Body != body {
		return fmt.Errorf("expected title %q and body %q, got %q and %q", title, body, messages[0].Title, messages[0].Body)
	}
	return nil
}
