package inputval

import "testing"

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"user@example.com", true},
		{"user.name@example.com", true},
		{"user+tag@example.com", true},
		{"user@subdomain.example.com", true},
		{"a@b.co", true},
		{"user@localhost", true},

		{"", false},
		{"   ", false},
		{"user", false},
		{"user@", false},
		{"@example.com", false},
		{".user@example.com", false},
		{"user.@example.com", false},
		{"user..name@example.com", false},
		{"user@.example.com", false},
		{"user@example..com", false},
		{"User Name <user@example.com>", false},
		{"user @example.com", false},
		{"user@exam ple.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := IsValidEmail(tt.email); got != tt.want {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestIsValidHTTPURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://jobs.example.com/123", true},
		{"http://example.com", true},
		{"  https://example.com  ", true},
		{"example.com", false},
		{"ftp://example.com", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsValidHTTPURL(tt.url); got != tt.want {
			t.Errorf("IsValidHTTPURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	type input struct {
		JobTitle    string `validate:"required,max=10" label:"Job title"`
		Email       string `validate:"omitempty,email" label:"Contact email"`
		Status      string `validate:"required,appstatus" label:"Status"`
		CompanyType string `validate:"required,companytype" label:"Company type"`
		Link        string `validate:"omitempty,httpurl" label:"Application link"`
	}

	valid := input{JobTitle: "Engineer", Status: "Accepted", CompanyType: "FAANG"}

	tests := []struct {
		name      string
		mutate    func(in *input)
		wantFirst string
	}{
		{"valid", func(in *input) {}, ""},
		{"missing title", func(in *input) { in.JobTitle = "" }, "Job title is required."},
		{"title too long", func(in *input) { in.JobTitle = "Principal Staff Engineer" }, "Job title must be at most 10 characters."},
		{"bad email", func(in *input) { in.Email = "nope" }, "A valid email address is required."},
		{"bad status", func(in *input) { in.Status = "Ghosted" }, "Status is not one of the allowed choices."},
		{"bad company type", func(in *input) { in.CompanyType = "Agency" }, "Company type is not one of the allowed choices."},
		{"bad link", func(in *input) { in.Link = "jobs.example.com" }, "Application link must be a full http:// or https:// address."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			res := Validate(in)
			if res.HasErrors() != (tt.wantFirst != "") {
				t.Fatalf("HasErrors = %v, errors %v", res.HasErrors(), res.Errors)
			}
			if res.First() != tt.wantFirst {
				t.Errorf("First() = %q, want %q", res.First(), tt.wantFirst)
			}
		})
	}
}

func TestResult_All(t *testing.T) {
	r := &Result{}
	if r.All() != "" {
		t.Errorf("All() = %q, want empty", r.All())
	}

	r = &Result{Errors: []FieldError{{Message: "Error 1"}, {Message: "Error 2"}}}
	if want := "Error 1; Error 2"; r.All() != want {
		t.Errorf("All() = %q, want %q", r.All(), want)
	}
	if r.First() != "Error 1" {
		t.Errorf("First() = %q, want %q", r.First(), "Error 1")
	}
}
