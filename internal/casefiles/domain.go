package casefiles

// Collection holds case paper documents.
const Collection = "casePapers"

// CasePaper is a single animal case record. CaseNumber is allocated by
// the SequenceAllocator at creation and never changes afterwards.
type CasePaper struct {
	CaseNumber   string `json:"caseNumber"`
	AnimalName   string `json:"animalName"`
	Species      string `json:"species"`
	Condition    string `json:"condition,omitempty"`
	Status       string `json:"status"`
	Notes        string `json:"notes,omitempty"`
	AdmittedDate string `json:"admittedDate"`
}

// AdmittedDateLayout is the calendar-date format of AdmittedDate. The
// admission day is an intake fact and stays distinct from the record's
// createdAt timestamp, which only says when the paper was typed in.
const AdmittedDateLayout = "2006-01-02"
