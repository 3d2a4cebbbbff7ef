package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spigell/program-matcher/internal/programs"
)

// FileSource serves profiles and programs from a json fixture:
//
//	{"profiles": [{"user_id": "...", ...}], "programs": [{"id": "...", ...}]}
type FileSource struct {
	profiles map[string]*programs.CompanyProfile
	catalog  *programs.Programs
}

type fixture struct {
	Profiles []map[string]any `json:"profiles"`
	Programs []map[string]any `json:"programs"`
}

// LoadFile reads and decodes the fixture at path.
func LoadFile(path string) (*FileSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return ParseFile(data)
}

// ParseFile decodes fixture contents. Dates, numbers and lists are accepted in their loose
// string forms.
func ParseFile(data []byte) (*FileSource, error) {
	var raw fixture
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal catalog file: %w", err)
	}

	catalog, err := programs.DecodePrograms(raw.Programs)
	if err != nil {
		return nil, err
	}

	profiles := make(map[string]*programs.CompanyProfile, len(raw.Profiles))
	for idx, item := range raw.Profiles {
		profile, err := programs.DecodeProfile(item)
		if err != nil {
			return nil, fmt.Errorf("profile %d: %w", idx, err)
		}
		if profile.UserID == "" {
			return nil, fmt.Errorf("profile %d has no user_id", idx)
		}
		profiles[profile.UserID] = profile
	}

	return &FileSource{profiles: profiles, catalog: catalog}, nil
}

func (s *FileSource) Profile(_ context.Context, userID string) (*programs.CompanyProfile, error) {
	profile, ok := s.profiles[userID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, userID)
	}
	copied := *profile
	return &copied, nil
}

func (s *FileSource) Programs(_ context.Context) (*programs.Programs, error) {
	items := make([]*programs.Program, len(s.catalog.Items))
	copy(items, s.catalog.Items)
	return &programs.Programs{Items: items}, nil
}

func (s *FileSource) Program(_ context.Context, id string) (*programs.Program, error) {
	program := s.catalog.FindByID(id)
	if program == nil {
		return nil, fmt.Errorf("%w: %s", ErrProgramNotFound, id)
	}
	return program, nil
}
