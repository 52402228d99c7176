package seeder

// Defaults is a small development catalog. Production catalogs are loaded
// by the content pipeline, not by these seeders.
func Defaults() []Seeder {
	return []Seeder{
		SkillsSeeder{},
		RolesSeeder{},
		JobPostingsSeeder{},
	}
}
