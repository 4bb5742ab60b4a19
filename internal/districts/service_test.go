package districts_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/GenQServe/citilyst-backend/internal/districts"
)

type stubRepo struct {
	byID map[string]districts.District
}

func newStubRepo() *stubRepo {
	return &stubRepo{byID: map[string]districts.District{}}
}

func (s *stubRepo) List(ctx context.Context) ([]districts.District, error) {
	out := make([]districts.District, 0, len(s.byID))
	for _, d := range s.byID {
		out = append(out, d)
	}
	return out, nil
}

func (s *stubRepo) Get(ctx context.Context, id string) (districts.District, error) {
	d, ok := s.byID[id]
	if !ok {
		return districts.District{}, districts.ErrNotFound
	}
	return d, nil
}

func (s *stubRepo) Create(ctx context.Context, id, name string) (districts.District, error) {
	d := districts.District{ID: id, Name: name}
	s.byID[id] = d
	return d, nil
}

func (s *stubRepo) Update(ctx context.Context, id, name string) (districts.District, error) {
	d, ok := s.byID[id]
	if !ok {
		return districts.District{}, districts.ErrNotFound
	}
	d.Name = name
	s.byID[id] = d
	return d, nil
}

func (s *stubRepo) Delete(ctx context.Context, id string) error {
	if _, ok := s.byID[id]; !ok {
		return districts.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func TestCreateDistrictTrimsName(t *testing.T) {
	repo := newStubRepo()
	svc := districts.NewService(repo)

	d, err := svc.Create(context.Background(), "  Coblong  ")
	require.NoError(t, err)
	require.Equal(t, "Coblong", d.Name)
	require.NotEmpty(t, d.ID)
}

func TestCreateDistrictRequiresName(t *testing.T) {
	svc := districts.NewService(newStubRepo())

	_, err := svc.Create(context.Background(), "   ")
	require.Error(t, err)
}

func TestUpdateDistrictUnknown(t *testing.T) {
	svc := districts.NewService(newStubRepo())

	_, err := svc.Update(context.Background(), "ghost", "Coblong")
	require.ErrorIs(t, err, districts.ErrNotFound)
}

func TestDeleteDistrict(t *testing.T) {
	repo := newStubRepo()
	repo.byID["d1"] = districts.District{ID: "d1", Name: "Coblong"}
	svc := districts.NewService(repo)

	require.NoError(t, svc.Delete(context.Background(), "d1"))
	require.ErrorIs(t, svc.Delete(context.Background(), "d1"), districts.ErrNotFound)
}
