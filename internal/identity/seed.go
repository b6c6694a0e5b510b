package identity

import "context"

func strptr(s string) *string { return &s }

// DemoUsers are the badge holders provisioned for demo installs. Their ids
// are the payloads printed on the sample QR codes.
var DemoUsers = []User{
	{ID: "USER001", Name: "Rahul Sharma", Email: strptr("rahul@example.com"), Phone: strptr("+91 9876543210")},
	{ID: "USER002", Name: "Priya Patel", Email: strptr("priya@example.com"), Phone: strptr("+91 9876543211")},
	{ID: "USER003", Name: "Amit Kumar", Email: strptr("amit@example.com"), Phone: strptr("+91 9876543212")},
	{ID: "USER004", Name: "Sneha Reddy", Email: strptr("sneha@example.com"), Phone: strptr("+91 9876543213")},
	{ID: "USER005", Name: "Vikram Singh", Email: strptr("vikram@example.com"), Phone: strptr("+91 9876543214")},
}

// Seed inserts the demo users, skipping any that already exist.
func (r *Repository) Seed(ctx context.Context) error {
	for _, u := range DemoUsers {
		if err := r.Ensure(ctx, u); err != nil {
			return err
		}
	}
	return nil
}
