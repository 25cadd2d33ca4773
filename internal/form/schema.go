package form

// FieldKind distinguishes how a text field is validated.
type FieldKind int

const (
	KindText FieldKind = iota
	KindDate
	KindSelect
)

// Field describes one text input of a form variant. RequiredMessage is
// appended when the field is empty after sanitation; InvalidMessage when a
// non-empty value fails the kind-specific check (date format, allowed
// option).
type Field struct {
	Key             string
	Label           string
	Kind            FieldKind
	Options         []string // for KindSelect
	RequiredMessage string
	InvalidMessage  string
}

// DateOrder requires the End field to be strictly later than the Start field
// when both parse.
type DateOrder struct {
	Start   string
	End     string
	Message string
}

// Slot is a fixed, named attachment position. Order is significant and is
// preserved through to the composed email. Label names the slot in the email
// body; Name names it in validation messages.
type Slot struct {
	Key   string
	Label string
	Name  string
}

// Schema parameterizes the shared submission pipeline for one form variant.
type Schema struct {
	Variant   string
	Title     string // email body heading
	Fields    []Field
	DateOrder *DateOrder
	Slots     []Slot

	SuccessMessage string
	FailureMessage string // returned when the transport rejects the message
}

// Registration is the driver license registration variant.
func Registration() Schema {
	return Schema{
		Variant: "registration",
		Title:   "New Driver License Registration",
		Fields: []Field{
			{
				Key: "name", Label: "Full Name", Kind: KindText,
				RequiredMessage: "Full name is required",
			},
			{
				Key: "start_date", Label: "License Issue Date", Kind: KindDate,
				RequiredMessage: "License issue date is required",
				InvalidMessage:  "Invalid license issue date format",
			},
			{
				Key: "exp_date", Label: "License Expiry Date", Kind: KindDate,
				RequiredMessage: "License expiry date is required",
				InvalidMessage:  "Invalid license expiry date format",
			},
			{
				Key: "department", Label: "Department", Kind: KindSelect,
				Options:         []string{"HR", "IT", "Finance", "Marketing"},
				RequiredMessage: "Valid department selection is required",
				InvalidMessage:  "Valid department selection is required",
			},
			{
				Key: "project", Label: "Project", Kind: KindSelect,
				Options:         []string{"Project A", "Project B", "Project C", "Project D"},
				RequiredMessage: "Valid project selection is required",
				InvalidMessage:  "Valid project selection is required",
			},
		},
		DateOrder: &DateOrder{
			Start:   "start_date",
			End:     "exp_date",
			Message: "License expiry date must be after issue date",
		},
		Slots: []Slot{
			{Key: "image1", Label: "Front Side", Name: "First image"},
			{Key: "image2", Label: "Back Side", Name: "Second image"},
		},
		SuccessMessage: "Your driver license registration has been submitted successfully!",
		FailureMessage: "Failed to submit registration. Please try again later or contact us directly.",
	}
}

// Contact is the plain contact variant: no name or license dates, same
// department/project selections and image slots.
func Contact() Schema {
	return Schema{
		Variant: "contact",
		Title:   "New Contact Form Submission",
		Fields: []Field{
			{
				Key: "department", Label: "Department", Kind: KindSelect,
				Options:         []string{"HR", "IT", "Finance", "Marketing"},
				RequiredMessage: "Valid department selection is required",
				InvalidMessage:  "Valid department selection is required",
			},
			{
				Key: "project", Label: "Project", Kind: KindSelect,
				Options:         []string{"Project A", "Project B", "Project C", "Project D"},
				RequiredMessage: "Valid project selection is required",
				InvalidMessage:  "Valid project selection is required",
			},
		},
		Slots: []Slot{
			{Key: "image1", Label: "First Image", Name: "First image"},
			{Key: "image2", Label: "Second Image", Name: "Second image"},
		},
		SuccessMessage: "Your message has been submitted successfully!",
		FailureMessage: "Failed to submit your message. Please try again later or contact us directly.",
	}
}
