package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dental-clinic-server/internal/apperrors"
	"dental-clinic-server/internal/testutil"
)

func TestHourOf(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"09:00", "09", false},
		{"09:59", "09", false},
		{"23:15", "23", false},
		{"9", "", true},
		{"ab:00", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := HourOf(tt.in)
			if tt.wantErr {
				assert.True(t, apperrors.Is(err, apperrors.ErrorTypeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCreate_FourthBookingInHourRejected(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()
	_, doc := testutil.SeedCatalog(t, store, "Cleaning", 30)
	svc := NewAppointmentService(store)

	book := func(clock string) error {
		_, err := svc.Create(ctx, CreateAppointmentInput{
			Name: "Ann", Phone: "555-0100", DoctorID: doc.ID,
			AppointmentDate: "2024-06-01", AppointmentTime: clock,
		})
		return err
	}

	require.NoError(t, book("09:00"))
	require.NoError(t, book("09:20"))
	require.NoError(t, book("09:40"))

	err := book("09:59")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeValidation))
	assert.Equal(t, CapacityExceededMessage, apperrors.MessageOf(err))

	assert.NoError(t, book("10:00"), "next hour is a separate bucket")

	ok, err := CheckCapacity(ctx, store, doc.ID, "2024-06-02", "09:00", "")
	require.NoError(t, err)
	assert.True(t, ok, "other dates are unaffected")
}

func TestCreate_NoDoctorIsUnconstrained(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()
	svc := NewAppointmentService(store)

	for i := 0; i < MaxAppointmentsPerHour+2; i++ {
		_, err := svc.Create(ctx, CreateAppointmentInput{
			Name: "Walk-in", Phone: "555", AppointmentDate: "2024-06-01", AppointmentTime: "09:00",
		})
		require.NoError(t, err)
	}
}

func TestUpdate_CapacityExcludesSelf(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()
	_, doc := testutil.SeedCatalog(t, store, "Cleaning", 30)
	svc := NewAppointmentService(store)

	var ids []string
	for _, clock := range []string{"09:00", "09:15", "09:30", "10:00"} {
		a, err := svc.Create(ctx, CreateAppointmentInput{
			Name: "Ann", Phone: "555", DoctorID: doc.ID, AppointmentDate: "2024-06-01", AppointmentTime: clock,
		})
		require.NoError(t, err)
		ids = append(ids, a.ID)
	}

	moved := "09:45"
	_, err := svc.Update(ctx, ids[0], UpdateAppointmentInput{AppointmentTime: &moved}, "admin")
	assert.NoError(t, err, "moving within a full hour keeps the count")

	_, err = svc.Update(ctx, ids[3], UpdateAppointmentInput{AppointmentTime: &moved}, "admin")
	require.Error(t, err)
	assert.Equal(t, CapacityExceededMessage, apperrors.MessageOf(err))

	got, err := svc.Get(ctx, ids[3])
	require.NoError(t, err)
	assert.Equal(t, "10:00", got.AppointmentTime)
}

func TestCreate_Validation(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()
	svc := NewAppointmentService(store)
	cleaning, doc := testutil.SeedCatalog(t, store, "Cleaning", 30)
	whitening, _ := testutil.SeedCatalog(t, store, "Whitening", 45)

	base := CreateAppointmentInput{Name: "Ann", Phone: "555", AppointmentDate: "2024-06-01", AppointmentTime: "09:00"}

	in := base
	in.AppointmentDate = "01/06/2024"
	_, err := svc.Create(ctx, in)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeValidation))

	in = base
	in.Phone = " "
	_, err = svc.Create(ctx, in)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeValidation))

	in = base
	in.DoctorID = "missing"
	_, err = svc.Create(ctx, in)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeValidation))

	in = base
	in.DoctorID = doc.ID
	in.ServiceID = whitening.ID
	_, err = svc.Create(ctx, in)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeValidation))

	in = base
	in.DoctorID = doc.ID
	in.AppointmentTime = "09:15:00"
	appt, err := svc.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "09:15", appt.AppointmentTime)
	require.NotNil(t, appt.ServiceID)
	assert.Equal(t, cleaning.ID, *appt.ServiceID)
	assert.Equal(t, "PENDING", string(appt.Status))
}
