package graph

// Node labels of the corporate ownership schema.
const (
	LabelCompany          = "Company"
	LabelPerson           = "Person"
	LabelStockholder      = "Stockholder"
	LabelLegalEntity      = "LegalEntity"
	LabelActive           = "Active"
	LabelClosed           = "Closed"
	LabelMajorShareholder = "MajorShareholder"

	// LabelFallback is used when no raw label survives resolution.
	LabelFallback = "Node"

	// LabelIndividualShareholder is the synthetic statistics label for the
	// shareholderType='PERSON' predicate count.
	LabelIndividualShareholder = "IndividualShareholder"
)

// Relationship types.
const (
	RelHoldsShares     = "HOLDS_SHARES"
	RelHasCompensation = "HAS_COMPENSATION"

	// RelFallback is used when a relationship arrives without a type.
	RelFallback = "RELATED"
)

// Property names.
const (
	PropBizno                 = "bizno"
	PropCompanyName           = "companyName"
	PropCompanyNameNormalized = "companyNameNormalized"
	PropPersonID              = "personId"
	PropStockName             = "stockName"
	PropStockNameNormalized   = "stockNameNormalized"
	PropDisplayName           = "displayName"
	PropLabels                = "labels"
	PropShareholderType       = "shareholderType"

	PropStockRatio  = "stockRatio"
	PropPct         = "pct" // compatibility alias for stockRatio
	PropBaseDate    = "baseDate"
	PropStockCount  = "stockCount"
	PropVotingPower = "votingPower"
)

// DefaultRelationshipTypes are fetched when the caller supplies none.
var DefaultRelationshipTypes = []string{RelHoldsShares, RelHasCompensation}

// LabelPriority orders raw labels when picking the primary one.
var LabelPriority = []string{LabelCompany, LabelPerson, LabelStockholder, LabelLegalEntity}

// NodeIDProperties maps a category to the property that uniquely
// identifies its instances.
var NodeIDProperties = map[string]string{
	LabelCompany:     PropBizno,
	LabelPerson:      PropPersonID,
	LabelStockholder: PropBizno, // a Stockholder is a Company or a Person
}

// NodeDisplayFallbacks maps a category to the ordered display properties
// tried when the id property is missing.
var NodeDisplayFallbacks = map[string][]string{
	LabelCompany: {PropCompanyName, PropBizno},
	LabelPerson:  {PropStockName, PropPersonID},
}

// GenericIDFallbacks is the cross-category id property chain.
var GenericIDFallbacks = []string{
	"id", PropBizno, PropPersonID, "name", PropCompanyName, PropStockName, "title",
}

// DefaultSearchProperties are searched when the caller supplies none.
var DefaultSearchProperties = []string{
	PropCompanyName, PropCompanyNameNormalized,
	PropStockName, PropStockNameNormalized,
	PropBizno, PropPersonID,
}

// AllowedIDProperties is the allow-list for caller-supplied identifier
// property names. Anything outside it is coerced to GenericIDProperty
// before reaching a query.
var AllowedIDProperties = map[string]struct{}{
	"id":                      {},
	PropBizno:                 {},
	PropPersonID:              {},
	PropCompanyName:           {},
	PropCompanyNameNormalized: {},
	PropStockName:             {},
	PropStockNameNormalized:   {},
}

// GenericIDProperty is the coercion target for unrecognized id properties.
const GenericIDProperty = "id"

// SanitizeIDProperty validates a caller-supplied identifier property name
// against the allow-list, coercing unknown values to the generic default.
// This keeps user input out of query text.
func SanitizeIDProperty(prop string) string {
	if _, ok := AllowedIDProperties[prop]; ok {
		return prop
	}
	return GenericIDProperty
}
