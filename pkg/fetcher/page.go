package fetcher

import (
	"errors"
	"strings"

	"github.com/BrobridgeOrg/qprofile-combiner/pkg/rules"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	ErrMissingRules = errors.New("response has no rules field")
	ErrMissingTotal = errors.New("response has no total")
)

type Page struct {
	Number   int
	PageSize int
	Total    int
	Rules    []*rules.Rule
}

type pageResponse struct {
	Total  *int          `json:"total"`
	P      int           `json:"p"`
	PS     int           `json:"ps"`
	Paging *pagingInfo   `json:"paging"`
	Rules  *[]ruleRecord `json:"rules"`
}

type pagingInfo struct {
	PageIndex int `json:"pageIndex"`
	PageSize  int `json:"pageSize"`
	Total     int `json:"total"`
}

type ruleRecord struct {
	Key      string        `json:"key"`
	Severity string        `json:"severity"`
	Params   []paramRecord `json:"params"`
}

type paramRecord struct {
	Key          string  `json:"key"`
	Value        *string `json:"value"`
	DefaultValue *string `json:"defaultValue"`
}

// ParsePage decodes one rules/search response. requested is the page size
// that was asked for and is used when the server does not report one.
func ParsePage(data []byte, number int, requested int) (*Page, error) {

	var resp pageResponse
	err := json.Unmarshal(data, &resp)
	if err != nil {
		return nil, err
	}

	if resp.Rules == nil {
		return nil, ErrMissingRules
	}

	p := &Page{
		Number:   number,
		PageSize: requested,
		Rules:    make([]*rules.Rule, 0, len(*resp.Rules)),
	}

	switch {
	case resp.PS > 0:
		p.PageSize = resp.PS
	case resp.Paging != nil && resp.Paging.PageSize > 0:
		p.PageSize = resp.Paging.PageSize
	}

	switch {
	case resp.Total != nil:
		p.Total = *resp.Total
	case resp.Paging != nil:
		p.Total = resp.Paging.Total
	default:
		return nil, ErrMissingTotal
	}

	for _, r := range *resp.Rules {
		p.Rules = append(p.Rules, r.toRule())
	}

	return p, nil
}

// Last reports whether no further page exists.
func (p *Page) Last() bool {
	return p.Number*p.PageSize >= p.Total
}

func (r *ruleRecord) toRule() *rules.Rule {

	// Unknown severities are kept as-is and rejected at activation
	sev, _ := rules.ParseSeverity(r.Severity)

	rule := &rules.Rule{
		Key:      strings.TrimSpace(r.Key),
		Severity: sev,
		Params:   make([]rules.Param, 0, len(r.Params)),
	}

	for _, param := range r.Params {

		var value *string
		switch {
		case param.Value != nil:
			value = param.Value
		case param.DefaultValue != nil:
			value = param.DefaultValue
		default:
			continue
		}

		rule.Params = append(rule.Params, rules.Param{
			Key:   param.Key,
			Value: *value,
		})
	}

	return rule
}
