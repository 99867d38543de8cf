package dummydb

import (
	"context"
	"sort"

	"github.com/ebdplacar/backend/core"
	"github.com/ebdplacar/backend/core/class"
	"github.com/ebdplacar/backend/core/user"
)

type classRepository struct {
	db *DB
}

var _ class.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(db *DB) class.Repository {
	return &classRepository{db: db}
}

func (repo *classRepository) CheckNameUniqueness(ctx context.Context, name string, excludedClasses ...class.Class) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, cls := range repo.db.classes {
		if cls.Name != name {
			continue
		}
		excluded := false
		for _, excl := range excludedClasses {
			if excl.ID == cls.ID {
				excluded = true
				break
			}
		}
		if !excluded {
			return class.ErrNameExists
		}
	}
	return nil
}

func (repo *classRepository) CreateClass(ctx context.Context, cls class.Class) (class.Class, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.classes {
		if existing.Name == cls.Name {
			return class.Class{}, class.ErrNameExists
		}
	}
	cls.ID = newPK()
	stored := cls
	stored.Teachers, stored.Students = nil, nil
	repo.db.classes[cls.ID] = &stored
	repo.db.classTeachers[cls.ID] = make(map[string]struct{})
	return cls, nil
}

func (repo *classRepository) GetClass(ctx context.Context, id string) (class.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if cls, ok := repo.db.classes[id]; ok {
		return *cls, nil
	}
	return class.Class{}, class.ErrNotFound
}

func (repo *classRepository) QueryClasses(ctx context.Context, ordering ...core.DBOrdering) ([]class.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	classes := make([]class.Class, 0, len(repo.db.classes))
	for _, cls := range repo.db.classes {
		classes = append(classes, *cls)
	}
	asc := true
	if len(ordering) > 0 {
		asc = ordering[0].Ascending
	}
	sort.Slice(classes, func(i, j int) bool {
		a, b := classes[i], classes[j]
		if !asc {
			a, b = b, a
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	return classes, nil
}

func (repo *classRepository) UpdateClass(ctx context.Context, cls class.Class) (class.Class, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.classes[cls.ID]
	if !ok {
		return class.Class{}, class.ErrNotFound
	}
	for _, existing := range repo.db.classes {
		if existing.ID != cls.ID && existing.Name == cls.Name {
			return class.Class{}, class.ErrNameExists
		}
	}
	orig.Name = cls.Name
	return *orig, nil
}

func (repo *classRepository) DeleteClassesByID(ctx context.Context, ids ...string) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.classes[id]; ok {
			repo.db.deleteClass(id)
			cnt++
		}
	}
	return cnt, nil
}

func (repo *classRepository) AssignTeacher(ctx context.Context, classID, userID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.classes[classID]; !ok {
		return class.ErrNotFound
	}
	if _, ok := repo.db.users[userID]; !ok {
		return user.ErrNotFound
	}
	repo.db.classTeachers[classID][userID] = struct{}{}
	return nil
}

func (repo *classRepository) UnassignTeacher(ctx context.Context, classID, userID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if set, ok := repo.db.classTeachers[classID]; ok {
		delete(set, userID)
	}
	return nil
}

func (repo *classRepository) QueryClassTeachers(ctx context.Context, classID string) ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var teachers []user.User
	for uid := range repo.db.classTeachers[classID] {
		if usr, ok := repo.db.users[uid]; ok {
			teachers = append(teachers, *usr)
		}
	}
	sort.Slice(teachers, func(i, j int) bool {
		if teachers[i].Name != teachers[j].Name {
			return teachers[i].Name < teachers[j].Name
		}
		return teachers[i].ID < teachers[j].ID
	})
	return teachers, nil
}

func (repo *classRepository) QueryTeacherClassIDs(ctx context.Context, userID string) ([]string, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var ids []string
	for classID, set := range repo.db.classTeachers {
		if _, ok := set[userID]; ok {
			ids = append(ids, classID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (repo *classRepository) CreateStudent(ctx context.Context, std class.Student) (class.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.classes[std.ClassID]; !ok {
		return class.Student{}, class.ErrNotFound
	}
	std.ID = newPK()
	repo.db.students[std.ID] = &std
	return std, nil
}

func (repo *classRepository) GetStudent(ctx context.Context, id string) (class.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if std, ok := repo.db.students[id]; ok {
		return *std, nil
	}
	return class.Student{}, class.ErrStudentNotFound
}

func (repo *classRepository) GetStudentByUserID(ctx context.Context, userID string) (class.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, std := range repo.db.students {
		if std.UserID.Valid && std.UserID.String == userID {
			return *std, nil
		}
	}
	return class.Student{}, class.ErrStudentNotFound
}

func (repo *classRepository) QueryStudentsByClass(ctx context.Context, classID string, ordering ...core.DBOrdering) ([]class.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var students []class.Student
	for _, std := range repo.db.students {
		if std.ClassID == classID {
			students = append(students, *std)
		}
	}
	asc := true
	if len(ordering) > 0 {
		asc = ordering[0].Ascending
	}
	sort.Slice(students, func(i, j int) bool {
		a, b := students[i], students[j]
		if !asc {
			a, b = b, a
		}
		if a.FullName != b.FullName {
			return a.FullName < b.FullName
		}
		return a.ID < b.ID
	})
	return students, nil
}

func (repo *classRepository) UpdateStudent(ctx context.Context, std class.Student) (class.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.students[std.ID]
	if !ok {
		return class.Student{}, class.ErrStudentNotFound
	}
	if _, ok := repo.db.classes[std.ClassID]; !ok {
		return class.Student{}, class.ErrNotFound
	}
	orig.FullName = std.FullName
	orig.ClassID = std.ClassID
	return *orig, nil
}

func (repo *classRepository) DeleteStudentsByID(ctx context.Context, ids ...string) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.students[id]; ok {
			repo.db.deleteStudent(id)
			cnt++
		}
	}
	return cnt, nil
}
