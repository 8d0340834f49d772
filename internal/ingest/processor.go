package ingest

import (
	"fmt"
	"io"
	"strings"

	"github.com/prohmpiriya/onboarding-console/internal/domain"
	"github.com/prohmpiriya/onboarding-console/internal/metadata"
)

// Mode selects the validation contract: add requires both files, update
// lets either be omitted and resolves city references against the known
// country relation as a fallback.
type Mode string

const (
	ModeAdd    Mode = "add"
	ModeUpdate Mode = "update"
)

// Blank templates offered for download.
const (
	StateTemplate = "code,name\n"
	CityTemplate  = "state_code,city_name\n"
)

// Input is one CSV processing request. States and Cities are the uploaded
// files; either may be nil in update mode. Existing is the unified relation
// of the selected country, consulted in update mode only.
type Input struct {
	Mode     Mode
	States   io.Reader
	Cities   io.Reader
	Existing *metadata.CountryRelation
}

// Processor validates state/city CSV uploads into a state list.
type Processor struct {
	parser TableParser
}

// NewProcessor creates a new Processor.
func NewProcessor(parser TableParser) *Processor {
	return &Processor{parser: parser}
}

// Process validates the uploaded files and returns either the resulting
// states (in first-seen order) or the full list of validation errors,
// never both. Errors are accumulated, not short-circuited, so the caller
// sees every defect in one pass. Row numbers in messages are physical file
// lines: the header is line 1, the first data row is line 2.
func (p *Processor) Process(in Input) ([]domain.State, []string) {
	var errs []string

	if in.States == nil && in.Cities == nil {
		if in.Mode == ModeAdd {
			return nil, []string{
				"Please upload a State CSV file.",
				"Please upload a City CSV file.",
			}
		}
		return nil, nil
	}
	if in.Mode == ModeAdd {
		if in.States == nil {
			errs = append(errs, "Please upload a State CSV file.")
		}
		if in.Cities == nil {
			errs = append(errs, "Please upload a City CSV file.")
		}
		if len(errs) > 0 {
			return nil, errs
		}
	}

	stateMap := make(map[string]*domain.State)
	var stateOrder []string

	if in.States != nil {
		stateRows, err := p.parser.Parse(in.States)
		switch {
		case err != nil:
			errs = append(errs, err.Error())
		case len(stateRows) == 0:
			errs = append(errs, "State CSV is empty.")
		case !hasColumns(stateRows[0], "code", "name"):
			errs = append(errs, "State CSV must have 'code' and 'name' headers.")
		default:
			seen := make(map[string]bool, len(stateRows))
			for idx, row := range stateRows {
				line := idx + 2
				code := strings.TrimSpace(row["code"])
				name := strings.TrimSpace(row["name"])
				if code == "" || name == "" {
					errs = append(errs, fmt.Sprintf("Row %d in State CSV has empty 'code' or 'name'.", line))
					continue
				}
				if seen[code] {
					// First occurrence wins; the duplicate is dropped.
					errs = append(errs, fmt.Sprintf("Duplicate state code '%s' found at row %d.", code, line))
					continue
				}
				seen[code] = true
				stateMap[code] = &domain.State{Code: code, Name: name}
				stateOrder = append(stateOrder, code)
			}
		}
	}

	if in.Cities != nil {
		cityRows, err := p.parser.Parse(in.Cities)
		switch {
		case err != nil:
			errs = append(errs, err.Error())
		case len(cityRows) == 0:
			errs = append(errs, "City CSV is empty.")
		case !hasColumns(cityRows[0], "state_code", "city_name"):
			errs = append(errs, "City CSV must have 'state_code' and 'city_name' headers.")
		default:
			for idx, row := range cityRows {
				line := idx + 2
				stateCode := strings.TrimSpace(row["state_code"])
				cityName := strings.TrimSpace(row["city_name"])
				if stateCode == "" || cityName == "" {
					errs = append(errs, fmt.Sprintf("Row %d in City CSV has empty 'state_code' or 'city_name'.", line))
					continue
				}

				if state, ok := stateMap[stateCode]; ok {
					state.Cities = append(state.Cities, cityName)
					continue
				}

				// Update mode may reference a state already known from the
				// unified relation of the selected country.
				if in.Mode == ModeUpdate && in.Existing != nil {
					if known, ok := in.Existing.States[stateCode]; ok {
						stateMap[stateCode] = &domain.State{
							Code:   known.Code,
							Name:   known.Name,
							Cities: []string{cityName},
						}
						stateOrder = append(stateOrder, stateCode)
						continue
					}
				}

				errs = append(errs, fmt.Sprintf("City '%s' at row %d references unknown state code '%s'.", cityName, line, stateCode))
			}
		}
	}

	// One error per duplicate occurrence beyond the first, per state.
	for _, code := range stateOrder {
		state := stateMap[code]
		seen := make(map[string]bool, len(state.Cities))
		for _, city := range state.Cities {
			if seen[city] {
				errs = append(errs, fmt.Sprintf("Duplicate city '%s' found in state '%s'.", city, state.Code))
			}
			seen[city] = true
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	states := make([]domain.State, 0, len(stateOrder))
	for _, code := range stateOrder {
		states = append(states, *stateMap[code])
	}
	return states, nil
}

func hasColumns(row Row, columns ...string) bool {
	for _, column := range columns {
		if _, ok := row[column]; !ok {
			return false
		}
	}
	return true
}
