package validation

import (
	"errors"
	"strings"
	"testing"
	"time"

	"copilot-context/internal/domain"
)

const minimalBody = `{
	"ticketId": "t1",
	"ticketingPlatformType": "zendesk",
	"ticketAttributesData": {},
	"userAttributesData": {},
	"orgAttributesData": {},
	"messages": []
}`

func mustValidationError(t *testing.T, err error) *ValidationError {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	return verr
}

func hasIssue(verr *ValidationError, path, fragment string) bool {
	for _, issue := range verr.Issues {
		if issue.Path == path && strings.Contains(issue.Message, fragment) {
			return true
		}
	}
	return false
}

func TestParse_MinimalRequest(t *testing.T) {
	req, err := Parse([]byte(minimalBody))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.TicketID != "t1" {
		t.Fatalf("expected ticket id t1, got %q", req.TicketID)
	}
	if req.TicketingPlatformType != domain.PlatformZendesk {
		t.Fatalf("unexpected platform %q", req.TicketingPlatformType)
	}
	if req.Messages == nil || len(req.Messages) != 0 {
		t.Fatalf("expected empty non-nil messages, got %#v", req.Messages)
	}
	if req.UserAttributesData == nil {
		t.Fatalf("expected user attributes map")
	}
}

func TestParse_FullMessage(t *testing.T) {
	body := `{
		"ticketId": "t-42",
		"ticketingPlatformType": "plain",
		"ticketAttributesData": {"priority": "high"},
		"userAttributesData": {"email": "ana@example.com", "seats": 3, "vip": true},
		"orgAttributesData": {"id": "org_1", "tags": []},
		"messages": [
			{
				"id": "m1",
				"createdAt": "2024-05-01T10:00:00Z",
				"content": "No puedo pagar",
				"authorId": "u1",
				"authorType": "user",
				"authorName": "Ana",
				"files": [{"id": "f1", "url": "https://files.example.com/f1.png"}],
				"isInternalComment": false,
				"unknownField": "ignored"
			},
			{
				"id": "m2",
				"createdAt": null,
				"content": "Revisando",
				"authorId": "a1",
				"authorType": "member",
				"files": []
			}
		]
	}`

	req, err := Parse([]byte(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(req.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(req.Messages))
	}
	first := req.Messages[0]
	if first.ID != "m1" || req.Messages[1].ID != "m2" {
		t.Fatalf("message order not preserved: %s, %s", first.ID, req.Messages[1].ID)
	}
	want := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	if first.CreatedAt == nil || !first.CreatedAt.Equal(want) {
		t.Fatalf("expected createdAt %v, got %v", want, first.CreatedAt)
	}
	if first.AuthorName == nil || *first.AuthorName != "Ana" {
		t.Fatalf("expected author name Ana, got %v", first.AuthorName)
	}
	if first.IsInternalComment == nil || *first.IsInternalComment {
		t.Fatalf("expected isInternalComment=false, got %v", first.IsInternalComment)
	}
	if len(first.Files) != 1 || first.Files[0].URL != "https://files.example.com/f1.png" {
		t.Fatalf("unexpected files: %+v", first.Files)
	}
	if req.Messages[1].CreatedAt != nil {
		t.Fatalf("expected null createdAt to be absent")
	}
	if _, ok := req.OrgAttributesData["tags"]; !ok {
		t.Fatalf("empty array is truthy and must be kept")
	}
}

func TestParse_CreatedAtFromEpochMillis(t *testing.T) {
	body := strings.Replace(minimalBody, `"messages": []`,
		`"messages": [{"id":"m1","createdAt":1714557600000,"content":"x","authorId":"u","authorType":"user","files":[]}]`, 1)

	req, err := Parse([]byte(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	if got := req.Messages[0].CreatedAt; got == nil || !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func messageWithCreatedAt(raw string) string {
	return strings.Replace(minimalBody, `"messages": []`,
		`"messages": [{"id":"m1","createdAt":`+raw+`,"content":"x","authorId":"u","authorType":"user","files":[]}]`, 1)
}

func TestParse_CreatedAtFalsyIsAbsent(t *testing.T) {
	for _, raw := range []string{`null`, `""`, `0`, `false`} {
		t.Run(raw, func(t *testing.T) {
			req, err := Parse([]byte(messageWithCreatedAt(raw)))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := req.Messages[0].CreatedAt; got != nil {
				t.Fatalf("expected createdAt to be absent, got %v", got)
			}
		})
	}
}

func TestParse_CreatedAtOutOfRange(t *testing.T) {
	cases := []string{
		`1e20`,
		`-1e20`,
		`9007199254740993000`,
		`8640000000000001`,
		`1e400`,
		`"1714557600000"`,
		`"20240501"`,
	}
	for _, raw := range cases {
		t.Run(raw, func(t *testing.T) {
			_, err := Parse([]byte(messageWithCreatedAt(raw)))
			verr := mustValidationError(t, err)
			if !hasIssue(verr, "messages[0].createdAt", "Invalid date") {
				t.Fatalf("expected Invalid date, got %v", verr)
			}
		})
	}
}

func TestParse_CreatedAtRangeLimits(t *testing.T) {
	cases := map[string]time.Time{
		`8640000000000000`:  time.UnixMilli(8640000000000000).UTC(),
		`-8640000000000000`: time.UnixMilli(-8640000000000000).UTC(),
		`1714557600000.9`:   time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		`"2024"`:            time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for raw, want := range cases {
		t.Run(raw, func(t *testing.T) {
			req, err := Parse([]byte(messageWithCreatedAt(raw)))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := req.Messages[0].CreatedAt; got == nil || !got.Equal(want) {
				t.Fatalf("expected %v, got %v", want, got)
			}
		})
	}
}

func TestParse_TicketID(t *testing.T) {
	t.Run("ausente", func(t *testing.T) {
		body := strings.Replace(minimalBody, `"ticketId": "t1",`, "", 1)
		_, err := Parse([]byte(body))
		verr := mustValidationError(t, err)
		if !hasIssue(verr, "ticketId", "Required") {
			t.Fatalf("expected Required on ticketId, got %v", verr)
		}
	})

	t.Run("no es string", func(t *testing.T) {
		body := strings.Replace(minimalBody, `"ticketId": "t1"`, `"ticketId": 123`, 1)
		_, err := Parse([]byte(body))
		verr := mustValidationError(t, err)
		if !hasIssue(verr, "ticketId", "Expected string, received number") {
			t.Fatalf("unexpected issues: %v", verr)
		}
	})
}

func TestParse_FalsyAttributeValues(t *testing.T) {
	cases := map[string]string{
		"string vacio": `""`,
		"cero":         `0`,
		"cero decimal": `0.0`,
		"false":        `false`,
		"null":         `null`,
	}
	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			body := strings.Replace(minimalBody, `"userAttributesData": {}`,
				`"userAttributesData": {"plan": "enterprise", "bad": `+value+`}`, 1)
			_, err := Parse([]byte(body))
			verr := mustValidationError(t, err)
			if !hasIssue(verr, "userAttributesData.bad", "Value must be truthy") {
				t.Fatalf("expected truthy issue, got %v", verr)
			}
			if len(verr.Issues) != 1 {
				t.Fatalf("expected only one issue, got %v", verr)
			}
		})
	}
}

func TestParse_ReportsEveryFailingField(t *testing.T) {
	body := `{
		"ticketId": "t1",
		"ticketingPlatformType": "zendesk",
		"ticketAttributesData": {"a": 0},
		"userAttributesData": {"b": ""},
		"orgAttributesData": {"c": false},
		"messages": []
	}`
	_, err := Parse([]byte(body))
	verr := mustValidationError(t, err)
	for _, path := range []string{"ticketAttributesData.a", "userAttributesData.b", "orgAttributesData.c"} {
		if !hasIssue(verr, path, "truthy") {
			t.Fatalf("missing issue for %s: %v", path, verr)
		}
	}
	if !strings.Contains(verr.Error(), "userAttributesData.b: Value must be truthy") {
		t.Fatalf("error message must name the field, got %q", verr.Error())
	}
}

func TestParse_AuthorTypeEnum(t *testing.T) {
	body := strings.Replace(minimalBody, `"messages": []`,
		`"messages": [{"id":"m1","content":"x","authorId":"u","authorType":"bot","files":[]}]`, 1)
	_, err := Parse([]byte(body))
	verr := mustValidationError(t, err)
	if !hasIssue(verr, "messages[0].authorType", "Expected 'user' | 'member', received 'bot'") {
		t.Fatalf("unexpected issues: %v", verr)
	}
}

func TestParse_PlatformType(t *testing.T) {
	t.Run("fuera del enum", func(t *testing.T) {
		body := strings.Replace(minimalBody, `"zendesk"`, `"jira"`, 1)
		_, err := Parse([]byte(body))
		verr := mustValidationError(t, err)
		if !hasIssue(verr, "ticketingPlatformType", "Invalid enum value") {
			t.Fatalf("unexpected issues: %v", verr)
		}
	})

	t.Run("ausente", func(t *testing.T) {
		body := strings.Replace(minimalBody, `"ticketingPlatformType": "zendesk",`, "", 1)
		_, err := Parse([]byte(body))
		verr := mustValidationError(t, err)
		if len(verr.Issues) != 1 || !hasIssue(verr, "ticketingPlatformType", "Required") {
			t.Fatalf("expected a single Required issue, got %v", verr)
		}
	})
}

func TestParse_MessageShape(t *testing.T) {
	t.Run("campos requeridos faltantes", func(t *testing.T) {
		body := strings.Replace(minimalBody, `"messages": []`, `"messages": [{"id":"m1"}]`, 1)
		_, err := Parse([]byte(body))
		verr := mustValidationError(t, err)
		for _, path := range []string{"messages[0].content", "messages[0].authorId", "messages[0].authorType", "messages[0].files"} {
			if !hasIssue(verr, path, "Required") {
				t.Fatalf("missing Required for %s: %v", path, verr)
			}
		}
	})

	t.Run("mensaje que no es objeto", func(t *testing.T) {
		body := strings.Replace(minimalBody, `"messages": []`, `"messages": ["hola"]`, 1)
		_, err := Parse([]byte(body))
		verr := mustValidationError(t, err)
		if len(verr.Issues) != 1 || !hasIssue(verr, "messages[0]", "Expected object, received string") {
			t.Fatalf("unexpected issues: %v", verr)
		}
	})

	t.Run("fecha invalida", func(t *testing.T) {
		body := strings.Replace(minimalBody, `"messages": []`,
			`"messages": [{"id":"m1","createdAt":"not a date","content":"x","authorId":"u","authorType":"user","files":[]}]`, 1)
		_, err := Parse([]byte(body))
		verr := mustValidationError(t, err)
		if !hasIssue(verr, "messages[0].createdAt", "Invalid date") {
			t.Fatalf("unexpected issues: %v", verr)
		}
	})

	t.Run("archivo sin url", func(t *testing.T) {
		body := strings.Replace(minimalBody, `"messages": []`,
			`"messages": [{"id":"m1","content":"x","authorId":"u","authorType":"user","files":[{"id":"f1"}]}]`, 1)
		_, err := Parse([]byte(body))
		verr := mustValidationError(t, err)
		if !hasIssue(verr, "messages[0].files[0].url", "Required") {
			t.Fatalf("unexpected issues: %v", verr)
		}
	})
}

func TestParse_MalformedBodies(t *testing.T) {
	cases := map[string]string{
		"vacio":       ``,
		"json roto":   `{"ticketId":`,
		"datos extra": minimalBody + `{}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(body))
			verr := mustValidationError(t, err)
			if verr.Error() != msgMalformedJSON {
				t.Fatalf("expected %q, got %q", msgMalformedJSON, verr.Error())
			}
		})
	}

	t.Run("raiz no es objeto", func(t *testing.T) {
		_, err := Parse([]byte(`[]`))
		verr := mustValidationError(t, err)
		if len(verr.Issues) != 1 || verr.Error() != "Expected object, received array" {
			t.Fatalf("unexpected issues: %v", verr)
		}
	})
}

func TestTruthy(t *testing.T) {
	if !truthy(map[string]any{}) || !truthy([]any{}) {
		t.Fatalf("empty containers must be truthy")
	}
	if !truthy("0") {
		t.Fatalf("non-empty string must be truthy")
	}
}
