package directory

import "github.com/harshitjain593/workree-chat/internal/domain"

// DefaultSeed is the development user set, used when no seed file is
// configured. In production the index is fed from the marketplace profile
// service.
func DefaultSeed() []domain.Participant {
	return []domain.Participant{
		{ID: "u-1001", Name: "Priya Sharma", Email: "priya.sharma@example.com", Role: "Frontend Developer"},
		{ID: "u-1002", Name: "Daniel Okafor", Email: "daniel.okafor@example.com", Role: "Backend Developer"},
		{ID: "u-1003", Name: "Mei Lin", Email: "mei.lin@example.com", Role: "Product Designer"},
		{ID: "u-1004", Name: "Carlos Mendes", Email: "carlos.mendes@example.com", Role: "QA Engineer"},
		{ID: "u-1005", Name: "Sara Haddad", Email: "sara.haddad@example.com", Role: "Project Manager"},
		{ID: "u-1006", Name: "Tom Becker", Email: "tom.becker@example.com", Role: "DevOps Engineer"},
	}
}
