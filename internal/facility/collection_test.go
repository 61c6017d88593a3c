package facility

import (
	"testing"

	id "zirrmi/pkg/domain"
	dErrors "zirrmi/pkg/domain-errors"

	"github.com/stretchr/testify/suite"
)

type CollectionSuite struct {
	suite.Suite
	c *Collection
}

func (s *CollectionSuite) SetupTest() {
	s.c = NewCollection()
}

func TestCollectionSuite(t *testing.T) {
	suite.Run(t, new(CollectionSuite))
}

func (s *CollectionSuite) TestNewCollection() {
	s.Run("starts with one blank record", func() {
		s.Equal(1, s.c.Count())
		rec := s.c.Records()[0]
		s.False(rec.ID.IsNil())
		s.Empty(rec.Name)
		s.Empty(rec.Notes)
	})

	s.Run("uses injected id generator", func() {
		fixed := id.NewFacilityID()
		c := NewCollection(WithIDGenerator(func() id.FacilityID { return fixed }))
		s.Equal(fixed, c.Records()[0].ID)
	})
}

func (s *CollectionSuite) TestAddAndRemove() {
	s.Run("add appends blank records with unique ids", func() {
		first := s.c.Records()[0].ID
		second := s.c.Add()
		third := s.c.Add()

		s.Equal(3, s.c.Count())
		s.NotEqual(first, second)
		s.NotEqual(second, third)
		s.Equal([]id.FacilityID{first, second, third}, ids(s.c.Records()))
	})

	s.Run("remove drops only the matching record", func() {
		c := NewCollection()
		a := c.Records()[0].ID
		b := c.Add()
		cc := c.Add()

		s.True(c.Remove(b))
		s.Equal([]id.FacilityID{a, cc}, ids(c.Records()))
	})

	s.Run("removing the last record is refused", func() {
		c := NewCollection()
		only := c.Records()[0].ID

		s.False(c.Remove(only))
		s.Equal(1, c.Count())
	})

	s.Run("removing an unknown id is a no-op", func() {
		c := NewCollection()
		c.Add()

		s.False(c.Remove(id.NewFacilityID()))
		s.Equal(2, c.Count())
	})

	s.Run("removed ids are not reused", func() {
		c := NewCollection()
		b := c.Add()
		s.True(c.Remove(b))
		s.NotEqual(b, c.Add())
	})
}

func (s *CollectionSuite) TestUpdate() {
	s.Run("sets a single field", func() {
		c := NewCollection()
		fid := c.Records()[0].ID

		s.True(c.Update(fid, FieldName, "Plant A"))
		s.True(c.Update(fid, FieldEmployeeCount, "120"))

		rec, ok := c.Get(fid)
		s.Require().True(ok)
		s.Equal("Plant A", rec.Name)
		s.Equal("120", rec.EmployeeCount)
		s.Empty(rec.Location)
	})

	s.Run("leaves other records untouched", func() {
		c := NewCollection()
		a := c.Records()[0].ID
		b := c.Add()

		s.True(c.Update(b, FieldLocation, "Lyon"))

		recA, _ := c.Get(a)
		s.Empty(recA.Location)
	})

	s.Run("unknown id is ignored", func() {
		c := NewCollection()
		s.False(c.Update(id.NewFacilityID(), FieldName, "x"))
		s.Empty(c.Records()[0].Name)
	})

	s.Run("records returns a copy", func() {
		c := NewCollection()
		recs := c.Records()
		recs[0].Name = "mutated"
		s.Empty(c.Records()[0].Name)
	})
}

func (s *CollectionSuite) TestFields() {
	s.Run("round-trips every wire name", func() {
		for f := FieldName; f <= FieldNotes; f++ {
			parsed, err := ParseField(f.String())
			s.Require().NoError(err)
			s.Equal(f, parsed)
		}
	})

	s.Run("unknown wire name is invalid input", func() {
		_, err := ParseField("colour")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("enumerated fields check their vocabulary", func() {
		s.True(FieldIndustry.Allows("metals"))
		s.False(FieldIndustry.Allows("mining"))
		s.True(FieldOperatingSchedule.Allows("24x7"))
		s.False(FieldBackupPowerType.Allows("battery"))
		s.True(FieldNotes.Allows("anything"))
	})

	s.Run("value reads back what update wrote", func() {
		c := NewCollection()
		fid := c.Records()[0].ID
		for f := FieldName; f <= FieldNotes; f++ {
			s.True(c.Update(fid, f, f.String()+"-v"))
		}
		rec, _ := c.Get(fid)
		for f := FieldName; f <= FieldNotes; f++ {
			s.Equal(f.String()+"-v", rec.Value(f))
		}
	})
}

func ids(recs []Record) []id.FacilityID {
	out := make([]id.FacilityID, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}
