package classifier

import (
	"regexp"
	"testing"

	"ticketbot/internal/domain"
)

type fakeRows map[string]domain.TicketRecord

func (f fakeRows) Lookup(ticketID string) (domain.TicketRecord, bool) {
	rec, ok := f[ticketID]
	return rec, ok
}

func newTestClassifier(rows fakeRows) *Classifier {
	return New(rows, DefaultSanitizationTable())
}

func TestClassifyStatusTokenMarkerPresent(t *testing.T) {
	cases := []struct {
		name string
		rec  domain.TicketRecord
		want string
	}{
		{
			name: "disbursed with repayment appends bucket",
			rec: domain.TicketRecord{
				ColMarker:     "IM+",
				ColLoanStatus: "DISBURSED",
				ColRepayment:  "REGULAR",
			},
			want: "im_disbursedregular",
		},
		{
			name: "plain marker keeps no underscore",
			rec: domain.TicketRecord{
				ColMarker:     "IM",
				ColLoanStatus: "REJECTED",
			},
			want: "imrejected",
		},
		{
			name: "repayment only appended to disbursed",
			rec: domain.TicketRecord{
				ColMarker:     "IM",
				ColLoanStatus: "CLOSED",
				ColRepayment:  "DELAYED_1",
			},
			want: "imclosed",
		},
		{
			name: "lr fallback when loan and repayment absent",
			rec: domain.TicketRecord{
				ColMarker:     "IM",
				ColLoanStatus: "nan",
				ColRepayment:  "  ",
				ColLRStatus:   "CLOSED",
			},
			want: "imclosed",
		},
		{
			name: "no bucket yields nostatus",
			rec: domain.TicketRecord{
				ColMarker:     "IM++",
				ColLoanStatus: "SOMETHING_ELSE",
			},
			want: "im__nostatus",
		},
		{
			name: "under review bucket",
			rec: domain.TicketRecord{
				ColMarker:     "IM",
				ColLoanStatus: "UNDER_REVIEW",
			},
			want: "imunder_review",
		},
		{
			name: "repayment without loan bucket yields nostatus",
			rec: domain.TicketRecord{
				ColMarker:    "IM",
				ColRepayment: "WRITTEN_OFF",
			},
			want: "imnostatus",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClassifier(fakeRows{"1": tc.rec})
			got := c.Classify("1")
			if got.Status != tc.want {
				t.Fatalf("status = %q, want %q", got.Status, tc.want)
			}
		})
	}
}

func TestClassifyStatusTokenMarkerAbsent(t *testing.T) {
	cases := []struct {
		name   string
		marker string
		lr     string
		want   string
	}{
		{name: "lr used directly", marker: "", lr: "approved", want: "approved"},
		{name: "trailing digits stripped", marker: "nan", lr: "Approved_2", want: "approved"},
		{name: "whitespace marker is absent", marker: "   ", lr: "pending_13", want: "pending"},
		{name: "absent lr yields nostatus", marker: "NaN", lr: "", want: "nostatus"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClassifier(fakeRows{"7": {
				ColMarker:   tc.marker,
				ColLRStatus: tc.lr,
			}})
			got := c.Classify("7")
			if got.Status != tc.want {
				t.Fatalf("status = %q, want %q", got.Status, tc.want)
			}
		})
	}
}

func TestClassifyUnknownTicketReturnsSentinel(t *testing.T) {
	c := newTestClassifier(fakeRows{})
	got := c.Classify("99999")
	if got.Status != domain.NotFoundSentinel || got.Category != domain.NotFoundSentinel {
		t.Fatalf("expected sentinel pair, got %+v", got)
	}
}

func TestCanonicalCategoryTableLookup(t *testing.T) {
	c := newTestClassifier(fakeRows{"1": {
		ColCategory: "Predisbursal_Loan_Query_IM+_instances_LOC-live-withdrawal_request_placed",
	}})
	got := c.Classify("1")
	if got.Category != "predisbursal_loan_query_im_inst" {
		t.Fatalf("category = %q, want predisbursal_loan_query_im_inst", got.Category)
	}
}

func TestCanonicalCategoryUnknownLabelIsSanitized(t *testing.T) {
	c := newTestClassifier(fakeRows{"1": {
		ColCategory: "Some New--Category (beta)!",
	}})
	got := c.Classify("1")
	if got.Category != "some_new_category_beta" {
		t.Fatalf("category = %q, want some_new_category_beta", got.Category)
	}
}

func TestCanonicalCategoryInvariants(t *testing.T) {
	valid := regexp.MustCompile(`^[a-z0-9_]+$`)
	labels := []string{
		"Predisbursal_Loan_Query_IM+_instances",
		"update_-_edit_details_bank_account_details_",
		"___weird---label with spaces and a very very very long tail that keeps going___",
		"ESCALATIONS_RBI-Cyber_Cell_",
		"plain",
	}
	table := DefaultSanitizationTable()
	for _, label := range labels {
		got := CanonicalCategory(label, table)
		if got == "" {
			t.Fatalf("label %q produced empty category", label)
		}
		if !valid.MatchString(got) {
			t.Fatalf("label %q produced invalid category %q", label, got)
		}
		if len(got) > MaxCategoryLen {
			t.Fatalf("label %q produced over-long category %q (%d chars)", label, got, len(got))
		}
	}
}

func TestCanonicalCategoryAbsentLabel(t *testing.T) {
	table := DefaultSanitizationTable()
	for _, label := range []string{"", "  ", "nan", "NaN"} {
		if got := CanonicalCategory(label, table); got != "" {
			t.Fatalf("label %q should map to empty category, got %q", label, got)
		}
	}
}

func TestSanitize(t *testing.T) {
	cases := map[string]string{
		"Hello World":        "hello_world",
		"a--b__c":            "a_b_c",
		"_trim_me_":          "trim_me",
		"UPPER+lower":        "upper_lower",
		"predisbursal_loan_query_loan_cancellation_request": "predisbursal_loan_query_loan_ca",
	}
	for in, want := range cases {
		if got := Sanitize(in); got != want {
			t.Fatalf("Sanitize(%q) = %q, want %q", in, got, want)
		}
	}
}
