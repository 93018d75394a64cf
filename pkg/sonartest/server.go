// Package sonartest provides an in-process fake of the quality profile
// management API for tests.
package sonartest

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/BrobridgeOrg/qprofile-combiner/pkg/rules"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	SearchPath   = "/api/rules/search"
	ActivatePath = "/api/qualityprofiles/activate_rule"
	Token        = "squ_sonartest"
)

type Activation struct {
	Profile  string
	Rule     string
	Severity string
	Reset    string
	Params   []rules.Param
}

type Server struct {
	*httptest.Server

	mu           sync.Mutex
	profiles     map[string][]*rules.Rule
	raw          map[string]string
	failSearch   map[string]int
	failRules    map[string]int
	targets      map[string]*rules.RuleSet
	searchCalls  map[string]int
	activations  []Activation
	reportedPS   int
	omitPageSize bool
	legacyPaging bool
}

func NewServer() *Server {

	s := &Server{
		profiles:    make(map[string][]*rules.Rule),
		raw:         make(map[string]string),
		failSearch:  make(map[string]int),
		failRules:   make(map[string]int),
		targets:     make(map[string]*rules.RuleSet),
		searchCalls: make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(SearchPath, s.search)
	mux.HandleFunc(ActivatePath, s.activate)

	s.Server = httptest.NewServer(s.auth(mux))

	return s
}

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		if r.Header.Get("Authorization") != "Bearer "+Token {
			http.Error(w, `{"errors":[{"msg":"Authentication required"}]}`, http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// SetProfile replaces the activated rules returned for the profile.
func (s *Server) SetProfile(key string, list ...*rules.Rule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[key] = list
}

// SetRawSearchResponse makes every search for the profile answer with body.
func (s *Server) SetRawSearchResponse(key string, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw[key] = body
}

func (s *Server) FailSearch(key string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failSearch[key] = status
}

// FailRule makes every activation of the rule key answer with status.
func (s *Server) FailRule(ruleKey string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failRules[ruleKey] = status
}

// ReportPageSize overrides the effective page size reported in responses.
func (s *Server) ReportPageSize(ps int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reportedPS = ps
}

// UsePagingObject reports pagination only through the nested paging object.
func (s *Server) UsePagingObject() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.omitPageSize = true
	s.legacyPaging = true
}

func (s *Server) SearchCalls(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searchCalls[key]
}

func (s *Server) Activations() []Activation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Activation{}, s.activations...)
}

// Target returns the rules currently active on a target profile.
func (s *Server) Target(key string) *rules.RuleSet {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rs, ok := s.targets[key]; ok {
		return rules.Merge(rs.List())
	}

	return rules.NewRuleSet()
}

type searchRule struct {
	Key      string        `json:"key"`
	Severity string        `json:"severity"`
	Params   []rules.Param `json:"params"`
}

type searchPaging struct {
	PageIndex int `json:"pageIndex"`
	PageSize  int `json:"pageSize"`
	Total     int `json:"total"`
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {

	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	profile := q.Get("qprofile")

	s.mu.Lock()
	defer s.mu.Unlock()

	s.searchCalls[profile]++

	if status, ok := s.failSearch[profile]; ok {
		w.WriteHeader(status)
		return
	}

	if body, ok := s.raw[profile]; ok {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
		return
	}

	if q.Get("activation") != "true" {
		http.Error(w, "activation filter required", http.StatusBadRequest)
		return
	}

	ps, err := strconv.Atoi(q.Get("ps"))
	if err != nil || ps <= 0 {
		http.Error(w, "invalid ps", http.StatusBadRequest)
		return
	}

	page, err := strconv.Atoi(q.Get("p"))
	if err != nil || page <= 0 {
		http.Error(w, "invalid p", http.StatusBadRequest)
		return
	}

	list := s.profiles[profile]
	start := (page - 1) * ps
	end := start + ps
	if start > len(list) {
		start = len(list)
	}
	if end > len(list) {
		end = len(list)
	}

	results := make([]searchRule, 0, end-start)
	for _, rule := range list[start:end] {
		results = append(results, searchRule{
			Key:      rule.Key,
			Severity: string(rule.Severity),
			Params:   append([]rules.Param{}, rule.Params...),
		})
	}

	reported := ps
	if s.reportedPS > 0 {
		reported = s.reportedPS
	}

	resp := map[string]interface{}{
		"p":     page,
		"rules": results,
	}

	if s.legacyPaging {
		resp["paging"] = searchPaging{PageIndex: page, PageSize: reported, Total: len(list)}
	} else {
		resp["total"] = len(list)
	}

	if !s.omitPageSize {
		resp["ps"] = reported
	}

	data, _ := json.Marshal(resp)

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Server) activate(w http.ResponseWriter, r *http.Request) {

	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()

	a := Activation{
		Profile:  q.Get("key"),
		Rule:     q.Get("rule"),
		Severity: q.Get("severity"),
		Reset:    q.Get("reset"),
		Params:   make([]rules.Param, 0),
	}

	for k := range q {
		if strings.HasPrefix(k, "params_") {
			a.Params = append(a.Params, rules.Param{
				Key:   strings.TrimPrefix(k, "params_"),
				Value: q.Get(k),
			})
		}
	}

	sort.Slice(a.Params, func(i, j int) bool {
		return a.Params[i].Key < a.Params[j].Key
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	s.activations = append(s.activations, a)

	if status, ok := s.failRules[a.Rule]; ok {
		w.WriteHeader(status)
		return
	}

	sev, err := rules.ParseSeverity(a.Severity)
	if err != nil || len(a.Profile) == 0 || len(a.Rule) == 0 {
		http.Error(w, `{"errors":[{"msg":"invalid activation"}]}`, http.StatusBadRequest)
		return
	}

	rs, ok := s.targets[a.Profile]
	if !ok {
		rs = rules.NewRuleSet()
		s.targets[a.Profile] = rs
	}

	// Activation replaces the whole configuration of the rule
	rs.Put(rules.NewRule(a.Rule, sev, a.Params...))

	w.WriteHeader(http.StatusNoContent)
}
