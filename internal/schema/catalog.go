package schema

// CatalogVersion identifies the built-in catalogue. Bump it whenever keys,
// labels or aliases change so stored mappings can be invalidated.
const CatalogVersion = "2024.1"

// Field keys of the built-in catalogue.
const (
	KeyName          = "name"
	KeyEmail         = "email"
	KeyPhone         = "phone"
	KeyBudgetMin     = "budgetMin"
	KeyBudgetMax     = "budgetMax"
	KeyBedrooms      = "bedrooms"
	KeyNeighborhoods = "neighborhoods"
	KeyAmenities     = "amenities"
	KeyVibes         = "vibes"
	KeyPriorities    = "priorities"
	KeyMoveInDate    = "moveInDate"
	KeyStatus        = "status"
	KeyPreApproved   = "preApproved"
	KeyHasPets       = "hasPets"
	KeyNotes         = "notes"
)

// defaultFields is the canonical client record. Aliases cover the column
// names HubSpot, Zoho and Airtable exports use by default.
var defaultFields = []FieldSpec{
	{
		Key: KeyName, Label: "Name", Type: FieldText, Required: true,
		Aliases: []string{"full name", "client name", "contact name", "client", "contact"},
	},
	{
		Key: KeyEmail, Label: "Email", Type: FieldText,
		Aliases: []string{"email address", "e-mail", "primary email", "contact email"},
	},
	{
		Key: KeyPhone, Label: "Phone", Type: FieldText,
		Aliases: []string{"phone number", "mobile", "mobile phone", "cell", "telephone"},
	},
	{
		Key: KeyBudgetMin, Label: "Budget Min", Type: FieldNumber,
		Aliases: []string{"min budget", "minimum budget", "budget from", "min price", "price min"},
	},
	{
		Key: KeyBudgetMax, Label: "Budget Max", Type: FieldNumber,
		Aliases: []string{"max budget", "maximum budget", "budget to", "max price", "price max", "budget"},
	},
	{
		Key: KeyBedrooms, Label: "Bedrooms", Type: FieldSet,
		Aliases:    []string{"beds", "bedroom count", "number of bedrooms"},
		Vocabulary: BedroomVocabulary,
	},
	{
		Key: KeyNeighborhoods, Label: "Neighborhoods", Type: FieldSet,
		Aliases:    []string{"neighborhood", "areas", "preferred areas", "locations"},
		Vocabulary: NeighborhoodVocabulary,
	},
	{
		Key: KeyAmenities, Label: "Amenities", Type: FieldSet,
		Aliases:    []string{"must haves", "features"},
		Vocabulary: AmenityVocabulary,
	},
	{
		Key: KeyVibes, Label: "Vibes", Type: FieldSet,
		Aliases:    []string{"vibe", "lifestyle", "style"},
		Vocabulary: VibeVocabulary,
	},
	{
		Key: KeyPriorities, Label: "Priorities", Type: FieldSet,
		Aliases:    []string{"priority", "top priorities"},
		Vocabulary: PriorityVocabulary,
	},
	{
		Key: KeyMoveInDate, Label: "Move-in Date", Type: FieldDate,
		Aliases: []string{"move in date", "move date", "target move date"},
	},
	{
		Key: KeyStatus, Label: "Status", Type: FieldStatus,
		Aliases: []string{"lead status", "lifecycle stage", "deal stage", "stage"},
	},
	{
		Key: KeyPreApproved, Label: "Pre-approved", Type: FieldBool,
		Aliases: []string{"preapproved", "pre approval", "mortgage pre-approval"},
	},
	{
		Key: KeyHasPets, Label: "Pets", Type: FieldBool,
		Aliases: []string{"has pets", "pet owner"},
	},
	{
		Key: KeyNotes, Label: "Notes", Type: FieldText,
		Aliases: []string{"comments", "description", "remarks"},
	},
}

// builtinTypes pins each known key to its coercion. Overrides may relabel a
// field but never change how its cells are parsed.
var builtinTypes = func() map[string]FieldType {
	m := make(map[string]FieldType, len(defaultFields))
	for _, f := range defaultFields {
		m[f.Key] = f.Type
	}
	return m
}()

// DefaultCatalog returns a copy of the built-in catalogue. Callers may modify
// the result freely.
func DefaultCatalog() Catalog {
	fields := make([]FieldSpec, len(defaultFields))
	for i, f := range defaultFields {
		f.Aliases = append([]string(nil), f.Aliases...)
		f.Vocabulary = append([]string(nil), f.Vocabulary...)
		fields[i] = f
	}
	return Catalog{Version: CatalogVersion, Fields: fields}
}
