package e2e

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"

	"folio/e2e/steps/contact"
)

// RegisterSteps registers all step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Background steps
	ctx.Step(`^the contact service is running$`, tc.contactServiceIsRunning)

	// Request steps
	ctx.Step(`^I GET "([^"]*)"$`, tc.get)

	// Assertion steps
	ctx.Step(`^the response status should be (\d+)$`, tc.responseStatusShouldBe)
	ctx.Step(`^the response field "([^"]*)" should equal "([^"]*)"$`, tc.responseFieldShouldEqual)
	ctx.Step(`^the response header "([^"]*)" should equal "([^"]*)"$`, tc.responseHeaderShouldEqual)
	ctx.Step(`^the response header "([^"]*)" should be set$`, tc.responseHeaderShouldBeSet)

	contact.RegisterSteps(ctx, tc)
}

func (tc *TestContext) contactServiceIsRunning(context.Context) error {
	return tc.GET("/health/live", nil)
}

func (tc *TestContext) get(_ context.Context, path string) error {
	return tc.GET(path, nil)
}

func (tc *TestContext) responseStatusShouldBe(_ context.Context, expectedStatus int) error {
	if got := tc.GetLastResponseStatus(); got != expectedStatus {
		return fmt.Errorf("expected status %d, got %d: %s", expectedStatus, got, string(tc.LastResponseBody))
	}
	return nil
}

func (tc *TestContext) responseFieldShouldEqual(_ context.Context, field, expectedValue string) error {
	value, err := tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if fmt.Sprint(value) != expectedValue {
		return fmt.Errorf("expected field %s to equal %q, got %q", field, expectedValue, fmt.Sprint(value))
	}
	return nil
}

func (tc *TestContext) responseHeaderShouldEqual(_ context.Context, name, expected string) error {
	if got := tc.GetLastResponseHeader(name); got != expected {
		return fmt.Errorf("expected header %s to equal %q, got %q", name, expected, got)
	}
	return nil
}

func (tc *TestContext) responseHeaderShouldBeSet(_ context.Context, name string) error {
	if tc.GetLastResponseHeader(name) == "" {
		return fmt.Errorf("expected header %s to be set", name)
	}
	return nil
}
