package project

// Seed registers the default project set when the registry is empty. The
// "undecided" pool accepts every category so claims can be filed before the
// owning project is settled.
func Seed(r *Registry) error {
	if r.Len() > 0 {
		return nil
	}
	defaults := []Project{
		{
			ID:                "undecided",
			Name:              "Undecided (pending allocation)",
			Code:              "PENDING-DECISION",
			Type:              TypeDepartment,
			Budget:            0,
			AllowedCategories: CategoryIDs(),
		},
		{
			ID:                "p1",
			Name:              "Medical Imaging Recognition Grant",
			Code:              "113-2221-E-006-001",
			Type:              TypeGrant,
			Budget:            1500000,
			AllowedCategories: []string{"office", "travel", "consumable", "equipment"},
		},
		{
			ID:                "p2",
			Name:              "Industry Automation Project",
			Code:              "113-A001-002",
			Type:              TypeIndustry,
			Budget:            500000,
			AllowedCategories: CategoryIDs(),
		},
		{
			ID:                "p3",
			Name:              "Department Administration",
			Code:              "D-006-ADMIN",
			Type:              TypeDepartment,
			Budget:            200000,
			AllowedCategories: []string{"office", "meal", "maintenance"},
		},
	}
	for _, p := range defaults {
		if err := r.Register(p); err != nil {
			return err
		}
	}
	return nil
}
