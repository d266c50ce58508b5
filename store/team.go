package store

import (
	"context"
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"gopkg.in/yaml.v3"

	models "github.com/phillip/culture-events-go/models"
	"github.com/phillip/culture-events-go/status"
)

//go:embed seed/team.yaml
var defaultTeamYAML []byte

type TeamStore struct {
	col *mongo.Collection
	now Clock
}

func NewTeamStore(db *mongo.Database) *TeamStore {
	return &TeamStore{col: db.Collection(TeamCollection), now: utcNow}
}

type TeamFilter struct {
	Type            string
	City            string
	IncludeInactive bool
}

func validateTeamMember(m *models.TeamMember) error {
	if strings.TrimSpace(m.Name) == "" {
		return status.Invalid("name is required")
	}
	if m.Type != models.TeamLeadership && m.Type != models.TeamCity {
		return status.Invalid("type must be %q or %q", models.TeamLeadership, models.TeamCity)
	}
	if m.Type == models.TeamCity && strings.TrimSpace(m.City) == "" {
		return status.Invalid("city is required for city team members")
	}
	return nil
}

func (s *TeamStore) Create(ctx context.Context, m *models.TeamMember) error {
	if m.Type == "" {
		m.Type = models.TeamLeadership
	}
	if err := validateTeamMember(m); err != nil {
		return err
	}
	now := s.now()
	m.ID = primitive.NewObjectID()
	m.IsActive = true
	m.CreatedAt = now
	m.UpdatedAt = now
	if _, err := s.col.InsertOne(ctx, m); err != nil {
		return fmt.Errorf("insert team member: %w", err)
	}
	return nil
}

func (s *TeamStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.TeamMember, error) {
	return findOne[models.TeamMember](ctx, s.col, bson.M{"_id": id})
}

func (s *TeamStore) List(ctx context.Context, f TeamFilter) ([]models.TeamMember, error) {
	filter := bson.M{}
	if !f.IncludeInactive {
		filter["is_active"] = true
	}
	if f.Type != "" {
		filter["type"] = f.Type
	}
	if f.City != "" {
		filter["city"] = bson.M{"$regex": "^" + regexp.QuoteMeta(f.City) + "$", "$options": "i"}
	}
	return findAll[models.TeamMember](ctx, s.col, filter, sortedByOrder())
}

// CityTeams groups active city members by lower-cased city.
func (s *TeamStore) CityTeams(ctx context.Context) (map[string][]models.TeamMember, error) {
	members, err := s.List(ctx, TeamFilter{Type: models.TeamCity})
	if err != nil {
		return nil, err
	}
	teams := map[string][]models.TeamMember{}
	for _, m := range members {
		key := strings.ToLower(strings.TrimSpace(m.City))
		teams[key] = append(teams[key], m)
	}
	return teams, nil
}

func (s *TeamStore) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	if t, ok := set["type"]; ok && t != models.TeamLeadership && t != models.TeamCity {
		return status.Invalid("type must be %q or %q", models.TeamLeadership, models.TeamCity)
	}
	return updateByID(ctx, s.col, id, set, s.now())
}

// Deactivate is the default delete: the member disappears from public
// listings but stays in the admin list.
func (s *TeamStore) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	return updateByID(ctx, s.col, id, bson.M{"is_active": false}, s.now())
}

// Delete removes the member for good and returns the removed record.
func (s *TeamStore) Delete(ctx context.Context, id primitive.ObjectID) (*models.TeamMember, error) {
	return removeByID[models.TeamMember](ctx, s.col, id)
}

type seedMember struct {
	Name        string `yaml:"name"`
	Designation string `yaml:"designation"`
	Role        string `yaml:"role"`
	Image       string `yaml:"image"`
	LinkedIn    string `yaml:"linkedin"`
	Instagram   string `yaml:"instagram"`
	Bio         string `yaml:"bio"`
	City        string `yaml:"city"`
}

func defaultTeam() ([]models.TeamMember, error) {
	var doc struct {
		Leadership []seedMember `yaml:"leadership"`
		City       []seedMember `yaml:"city"`
	}
	if err := yaml.Unmarshal(defaultTeamYAML, &doc); err != nil {
		return nil, fmt.Errorf("parse default team: %w", err)
	}

	var out []models.TeamMember
	add := func(m seedMember, typ string, order int) {
		out = append(out, models.TeamMember{
			Name: m.Name, Designation: m.Designation, Role: m.Role, Image: m.Image,
			LinkedIn: m.LinkedIn, Instagram: m.Instagram, Bio: m.Bio, City: m.City,
			Type: typ, Order: order,
		})
	}
	for i, m := range doc.Leadership {
		add(m, models.TeamLeadership, i+1)
	}
	perCity := map[string]int{}
	for _, m := range doc.City {
		perCity[m.City]++
		add(m, models.TeamCity, perCity[m.City])
	}
	return out, nil
}

// SeedDefaults inserts the starter team when the collection is empty and
// returns how many members the collection holds afterwards.
func (s *TeamStore) SeedDefaults(ctx context.Context) (count int, seeded bool, err error) {
	n, err := s.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, false, fmt.Errorf("count team members: %w", err)
	}
	if n > 0 {
		return int(n), false, nil
	}

	members, err := defaultTeam()
	if err != nil {
		return 0, false, err
	}
	now := s.now()
	docs := make([]any, len(members))
	for i := range members {
		members[i].ID = primitive.NewObjectID()
		members[i].IsActive = true
		members[i].CreatedAt = now
		members[i].UpdatedAt = now
		docs[i] = members[i]
	}
	if _, err := s.col.InsertMany(ctx, docs); err != nil {
		return 0, false, fmt.Errorf("seed team: %w", err)
	}
	return len(members), true, nil
}
