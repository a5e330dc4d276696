package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/pantrypal/internal/model"
)

var today = model.NewDate(2024, time.March, 10)

func fieldErrors(t *testing.T, err error) Errors {
	t.Helper()
	errs, ok := AsErrors(err)
	require.True(t, ok, "expected validation errors, got %v", err)
	return errs
}

func TestRegister(t *testing.T) {
	valid := func() Registration {
		return Registration{
			Name:            "Ana",
			Email:           "ana@example.com",
			Password:        "secret123",
			ConfirmPassword: "secret123",
		}
	}

	f := valid()
	f.Name = "  Ana  "
	require.NoError(t, Register(&f))
	assert.Equal(t, "Ana", f.Name)

	tests := []struct {
		name   string
		mutate func(*Registration)
		want   FieldError
	}{
		{"empty name", func(f *Registration) { f.Name = " " }, FieldError{"name", "Name is required"}},
		{"empty email", func(f *Registration) { f.Email = "" }, FieldError{"email", "Email is required"}},
		{"bad email", func(f *Registration) { f.Email = "ana@" }, FieldError{"email", "Please enter a valid email address"}},
		{"empty password", func(f *Registration) { f.Password, f.ConfirmPassword = "", "" }, FieldError{"password", "Password is required"}},
		{"short password", func(f *Registration) { f.Password, f.ConfirmPassword = "short", "short" }, FieldError{"password", "Password must be at least 8 characters long"}},
		{"mismatch", func(f *Registration) { f.ConfirmPassword = "secret124" }, FieldError{"confirm_password", "Passwords do not match"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid()
			tt.mutate(&f)
			errs := fieldErrors(t, Register(&f))
			assert.Equal(t, Errors{tt.want}, errs)
		})
	}
}

func TestRegisterReportsFieldsInOrder(t *testing.T) {
	errs := fieldErrors(t, Register(&Registration{}))
	fields := make([]string, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, e.Field)
	}
	assert.Equal(t, []string{"name", "email", "password"}, fields)
	assert.Equal(t, "name: Name is required", errs.Error())
}

func TestLogin(t *testing.T) {
	require.NoError(t, Login(&Credentials{Email: "ana@example.com", Password: "x"}))

	errs := fieldErrors(t, Login(&Credentials{Email: "nope", Password: ""}))
	assert.Equal(t, Errors{
		{"email", "Please enter a valid email"},
		{"password", "Password is required"},
	}, errs)
}

func TestAccountForms(t *testing.T) {
	assert.Equal(t, Errors{{"name", "Name cannot be empty"}},
		fieldErrors(t, UpdateName(&DisplayName{Name: "   "})))
	assert.NoError(t, UpdateName(&DisplayName{Name: "Bo"}))

	assert.Equal(t, Errors{{"password", "Password required"}},
		fieldErrors(t, DeleteAccount(&AccountDeletion{})))
	assert.NoError(t, DeleteAccount(&AccountDeletion{Password: "x"}))

	errs := fieldErrors(t, ChangePassword(&PasswordChange{
		CurrentPassword: "old",
		NewPassword:     "short",
		ConfirmPassword: "other",
	}))
	assert.Equal(t, Errors{
		{"new_password", "Password must be at least 8 characters"},
		{"confirm_password", "Passwords do not match"},
	}, errs)
	assert.NoError(t, ChangePassword(&PasswordChange{
		CurrentPassword: "old",
		NewPassword:     "longenough",
		ConfirmPassword: "longenough",
	}))
}

func TestAddItemDaysMode(t *testing.T) {
	n, err := AddItem(&ItemForm{
		Name:        " Milk ",
		Quantity:    "1.5",
		Unit:        "L",
		DaysFromNow: "7",
	}, today)
	require.NoError(t, err)

	assert.Equal(t, "Milk", n.Name)
	assert.Equal(t, 1.5, n.Quantity)
	assert.Equal(t, today, n.PurchaseDate)
	assert.Equal(t, today.AddDays(7), n.ExpiryDate)
	assert.Equal(t, model.ExpiryModeDays, n.ExpiryMode)
	assert.Empty(t, n.Warnings)

	item := n.Item("owner-1")
	assert.Equal(t, "owner-1", item.OwnerID)
	assert.Equal(t, today.AddDays(7), item.ExpiryDate)
}

func TestAddItemDateMode(t *testing.T) {
	n, err := AddItem(&ItemForm{
		Name:         "Cheese",
		Quantity:     "2",
		Unit:         "pcs",
		PurchaseDate: "Mar 1, 2024",
		ExpiryMode:   model.ExpiryModeDate,
		ExpiryDate:   "2024-04-01",
	}, today)
	require.NoError(t, err)

	assert.Equal(t, model.NewDate(2024, time.March, 1), n.PurchaseDate)
	assert.Equal(t, model.NewDate(2024, time.April, 1), n.ExpiryDate)
}

func TestAddItemWarnsWhenExpiryBeforePurchase(t *testing.T) {
	n, err := AddItem(&ItemForm{
		Name:         "Old",
		Quantity:     "1",
		Unit:         "pcs",
		PurchaseDate: "Mar 10, 2024",
		ExpiryMode:   model.ExpiryModeDate,
		ExpiryDate:   "Mar 5, 2024",
	}, today)
	require.NoError(t, err)
	assert.Equal(t, []string{"Expiry date is before purchase date"}, n.Warnings)
}

func TestAddItemErrors(t *testing.T) {
	valid := func() ItemForm {
		return ItemForm{Name: "Rice", Quantity: "1", Unit: "kg", DaysFromNow: "3"}
	}

	tests := []struct {
		name   string
		mutate func(*ItemForm)
		want   FieldError
	}{
		{"empty name", func(f *ItemForm) { f.Name = "" }, FieldError{"name", "Item name required"}},
		{"empty quantity", func(f *ItemForm) { f.Quantity = "" }, FieldError{"quantity", "Quantity required"}},
		{"empty unit", func(f *ItemForm) { f.Unit = "" }, FieldError{"unit", "Unit required"}},
		{"bad mode", func(f *ItemForm) { f.ExpiryMode = "weeks" }, FieldError{"expiry_mode", "Choose an expiry date or a number of days"}},
		{"not a number", func(f *ItemForm) { f.Quantity = "lots" }, FieldError{"quantity", "Invalid number"}},
		{"zero", func(f *ItemForm) { f.Quantity = "0" }, FieldError{"quantity", "Must be > 0"}},
		{"negative", func(f *ItemForm) { f.Quantity = "-2" }, FieldError{"quantity", "Must be > 0"}},
		{"fractional pieces", func(f *ItemForm) { f.Unit, f.Quantity = "Pcs", "1.5" }, FieldError{"quantity", "Pieces must be whole numbers"}},
		{"bad purchase date", func(f *ItemForm) { f.PurchaseDate = "someday" }, FieldError{"purchase_date", "Invalid Purchase Date"}},
		{"missing days", func(f *ItemForm) { f.DaysFromNow = "" }, FieldError{"days_from_now", "Enter days"}},
		{"negative days", func(f *ItemForm) { f.DaysFromNow = "-1" }, FieldError{"days_from_now", "Invalid input"}},
		{"fractional days", func(f *ItemForm) { f.DaysFromNow = "1.5" }, FieldError{"days_from_now", "Invalid input"}},
		{"days past year 9999", func(f *ItemForm) { f.DaysFromNow = "3000000" }, FieldError{"days_from_now", "Invalid input"}},
		{"absurd days", func(f *ItemForm) { f.DaysFromNow = "5000000" }, FieldError{"days_from_now", "Invalid input"}},
		{"expiry before year 1", func(f *ItemForm) {
			f.ExpiryMode = model.ExpiryModeDate
			f.ExpiryDate = "Jan 1, 0000"
		}, FieldError{"expiry_date", "Invalid expiry date"}},
		{"bad expiry date", func(f *ItemForm) {
			f.ExpiryMode = model.ExpiryModeDate
			f.ExpiryDate = "soon"
		}, FieldError{"expiry_date", "Invalid expiry date"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid()
			tt.mutate(&f)
			_, err := AddItem(&f, today)
			assert.Equal(t, Errors{tt.want}, fieldErrors(t, err))
		})
	}
}

func TestParseQuantity(t *testing.T) {
	v, err := ParseQuantity("3", "pcs")
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)

	_, err = ParseQuantity("NaN", "kg")
	assert.ErrorIs(t, err, ErrInvalidNumber)
	_, err = ParseQuantity("2.5", " PCS ")
	assert.ErrorIs(t, err, ErrFractionalPieces)
}

func TestParseDisplayDate(t *testing.T) {
	want := model.NewDate(2024, time.March, 5)
	for _, s := range []string{"Mar 5, 2024", "2024-03-05", "2024/03/05"} {
		got, err := ParseDisplayDate(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, got, s)
	}

	_, err := ParseDisplayDate("")
	assert.Error(t, err)
	_, err = ParseDisplayDate("05/03/2024") // ambiguous day/month
	assert.Error(t, err)
	_, err = ParseDisplayDate("Jan 1, 0000")
	assert.Error(t, err)

	last, err := ParseDisplayDate("Dec 31, 9999")
	require.NoError(t, err)
	assert.Equal(t, "9999-12-31", last.String())
}

func TestAddItemLatestStorableExpiry(t *testing.T) {
	f := ItemForm{Name: "Salt", Quantity: "1", Unit: "kg", ExpiryMode: model.ExpiryModeDate, ExpiryDate: "9999-12-31"}
	n, err := AddItem(&f, today)
	require.NoError(t, err)

	back, err := model.ParseDate(n.ExpiryDate.String())
	require.NoError(t, err)
	assert.Equal(t, n.ExpiryDate, back)
}
