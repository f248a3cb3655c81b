package store

const categoriesTable = "categories"

const categoryColumns = "id, name, icon, color, created_at"

// CreateCategory inserts a new category and returns its id. Names are unique;
// a duplicate surfaces as an internal constraint error from the store.
func (s *Store) CreateCategory(name string, icon, color *string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := validateNonEmpty("name", name); err != nil {
		return 0, err
	}
	return s.create(categoriesTable,
		"INSERT INTO categories (name, icon, color) VALUES (?, ?, ?)",
		name, icon, color)
}

// GetCategory fetches a category by id.
func (s *Store) GetCategory(id int64) (Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getCategory(id)
}

func (s *Store) getCategory(id int64) (Category, error) {
	return queryOne(s, categoriesTable, id,
		"SELECT "+categoryColumns+" FROM categories WHERE id = ?",
		scanCategory, id)
}

// ListCategories returns all categories ordered by name.
func (s *Store) ListCategories() ([]Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return queryList(s, "SELECT "+categoryColumns+" FROM categories ORDER BY name", scanCategory)
}

// UpdateCategory rewrites a category's fields.
func (s *Store) UpdateCategory(id int64, name string, icon, color *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := validateNonEmpty("name", name); err != nil {
		return err
	}
	return s.mutate(categoriesTable, id,
		"UPDATE categories SET name = ?, icon = ?, color = ? WHERE id = ?",
		name, icon, color, id)
}

// DeleteCategory removes a category. Referencing commands, groups and
// workflows keep existing with their category_id set to NULL by the schema.
func (s *Store) DeleteCategory(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutate(categoriesTable, id, "DELETE FROM categories WHERE id = ?", id)
}

// CategoryCommandCount counts commands tagged with the category.
func (s *Store) CategoryCommandCount(id int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	if err := s.db.QueryRow("SELECT COUNT(*) FROM commands WHERE category_id = ?", id).Scan(&count); err != nil {
		return 0, translate(err)
	}
	return count, nil
}

func scanCategory(row scanner) (Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.Name, &c.Icon, &c.Color, &c.CreatedAt)
	return c, err
}
