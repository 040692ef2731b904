package graph

import "fmt"

// UnknownID is the sentinel returned when every identity source is empty.
const UnknownID = "unknown"

// ResolveNodeID derives the stable external identifier for a node record.
// The chain is ordered, first non-empty match wins:
//
//  1. the category's id property (Company→bizno, Person→personId, ...),
//  2. the category's display fallbacks (companyName, stockName, ...),
//  3. the generic cross-category fallbacks,
//  4. the row-local surrogate key supplied by the gateway,
//  5. the literal "unknown".
func ResolveNodeID(props map[string]interface{}, labels []string, surrogate string) string {
	for _, label := range labels {
		idProp, ok := NodeIDProperties[label]
		if !ok {
			continue
		}
		if v := stringProp(props, idProp); v != "" {
			return v
		}
		for _, fallback := range NodeDisplayFallbacks[label] {
			if v := stringProp(props, fallback); v != "" {
				return v
			}
		}
	}

	for _, prop := range GenericIDFallbacks {
		if v := stringProp(props, prop); v != "" {
			return v
		}
	}

	if surrogate != "" {
		return surrogate
	}
	return UnknownID
}

// ResolvePrimaryLabel picks the primary category for a raw label set:
// highest configured priority, else the first raw label, else a label
// inferred from the shareholderType discriminator, else "Node".
func ResolvePrimaryLabel(labels []string, props map[string]interface{}) string {
	for _, priority := range LabelPriority {
		for _, label := range labels {
			if label == priority {
				return priority
			}
		}
	}
	if len(labels) > 0 {
		return labels[0]
	}

	switch stringProp(props, PropShareholderType) {
	case "PERSON":
		return LabelPerson
	case "CORPORATION", "INSTITUTION":
		return LabelCompany
	}
	return LabelFallback
}

// DisplayName derives the human-readable name stored alongside the raw
// properties of every built node.
func DisplayName(props map[string]interface{}, labels []string) string {
	for _, label := range labels {
		if label == LabelCompany {
			if v := stringProp(props, PropCompanyName); v != "" {
				return v
			}
			if v := stringProp(props, PropBizno); v != "" {
				return v
			}
			return "Unknown Company"
		}
		if label == LabelPerson {
			if v := stringProp(props, PropStockName); v != "" {
				return v
			}
			if v := stringProp(props, PropPersonID); v != "" {
				return v
			}
			return "Unknown Person"
		}
	}

	for _, prop := range []string{"name", "title", PropCompanyName, PropStockName} {
		if v := stringProp(props, prop); v != "" {
			return v
		}
	}
	return "Unknown"
}

// stringProp renders a property value as a string, "" when absent.
func stringProp(props map[string]interface{}, key string) string {
	v, ok := props[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
