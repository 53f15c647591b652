package timetable

import "github.com/noah-isme/school-timetable-api/internal/models"

// Subject names as stored in the subjects table.
const (
	Mathematics      = "Mathematics"
	Belarusian       = "Belarusian Language"
	Russian          = "Russian Language"
	LiteraryReading  = "Literary Reading"
	Literature       = "Literature"
	ForeignLanguage  = "Foreign Language"
	HumanAndWorld    = "Human and the World"
	PhysicalEd       = "Physical Education"
	Music            = "Music"
	FineArts         = "Fine Arts"
	Labor            = "Labor Training"
	LifeSafety       = "Life Safety"
	WorldHistory     = "World History"
	BelarusHistory   = "History of Belarus"
	SocialStudies    = "Social Studies"
	Geography        = "Geography"
	Biology          = "Biology"
	Physics          = "Physics"
	Chemistry        = "Chemistry"
	Informatics      = "Informatics"
	Art              = "Art"
	TechnicalDrawing = "Technical Drawing"
	Astronomy        = "Astronomy"
)

func plain(name string, hours int) models.StandardSubject {
	return models.StandardSubject{Name: name, Hours: hours}
}

func specialist(name string, hours int) models.StandardSubject {
	return models.StandardSubject{Name: name, Hours: hours, NeedsSpecialist: true}
}

var primaryLower = []models.StandardSubject{
	plain(Mathematics, 5), plain(Belarusian, 5), plain(Russian, 5), plain(LiteraryReading, 3),
	specialist(ForeignLanguage, 3), plain(HumanAndWorld, 2), specialist(PhysicalEd, 3),
	specialist(Music, 1), specialist(FineArts, 1), plain(Labor, 1),
}

var seniorCore = []models.StandardSubject{
	plain(Mathematics, 5), plain(Belarusian, 2), plain(Russian, 2), plain(Literature, 3), plain(ForeignLanguage, 3),
	plain(WorldHistory, 2), plain(BelarusHistory, 2), plain(SocialStudies, 2), plain(Geography, 1), plain(Biology, 2),
	plain(Physics, 3), plain(Chemistry, 2), plain(Informatics, 1),
}

var standardCurriculum = map[int][]models.StandardSubject{
	1: {
		plain(Mathematics, 4), plain(Belarusian, 5), plain(Russian, 5), plain(LiteraryReading, 4),
		plain(HumanAndWorld, 1), specialist(PhysicalEd, 2), specialist(Music, 1), specialist(FineArts, 1), plain(Labor, 1),
	},
	2: primaryLower,
	3: primaryLower,
	4: append(append([]models.StandardSubject{}, primaryLower...), plain(LifeSafety, 1)),
	5: {
		plain(Mathematics, 5), plain(Belarusian, 3), plain(Russian, 3), plain(Literature, 2), plain(ForeignLanguage, 3),
		plain(WorldHistory, 2), plain(Geography, 2), plain(Biology, 2), plain(Informatics, 1), plain(Art, 1),
		plain(Labor, 2), plain(PhysicalEd, 3), plain(LifeSafety, 1),
	},
	6: {
		plain(Mathematics, 5), plain(Belarusian, 3), plain(Russian, 3), plain(Literature, 2), plain(ForeignLanguage, 3),
		plain(WorldHistory, 2), plain(BelarusHistory, 1), plain(Geography, 2), plain(Biology, 2), plain(Informatics, 1), plain(Art, 1),
		plain(Labor, 2), plain(PhysicalEd, 3), plain(LifeSafety, 1),
	},
	7: {
		plain(Mathematics, 5), plain(Belarusian, 2), plain(Russian, 2), plain(Literature, 2), plain(ForeignLanguage, 3),
		plain(WorldHistory, 2), plain(BelarusHistory, 2), plain(Geography, 2), plain(Biology, 2), plain(Physics, 2),
		plain(Informatics, 1), plain(Art, 1), plain(Labor, 2), plain(PhysicalEd, 3), plain(LifeSafety, 1),
	},
	8: {
		plain(Mathematics, 5), plain(Belarusian, 2), plain(Russian, 2), plain(Literature, 2), plain(ForeignLanguage, 3),
		plain(WorldHistory, 2), plain(BelarusHistory, 2), plain(SocialStudies, 1), plain(Geography, 2), plain(Biology, 2),
		plain(Physics, 2), plain(Chemistry, 2), plain(Informatics, 1), plain(Art, 1), plain(TechnicalDrawing, 1),
		plain(Labor, 1), plain(PhysicalEd, 3), plain(LifeSafety, 1),
	},
	9: {
		plain(Mathematics, 5), plain(Belarusian, 2), plain(Russian, 2), plain(Literature, 2), plain(ForeignLanguage, 3),
		plain(WorldHistory, 2), plain(BelarusHistory, 2), plain(SocialStudies, 1), plain(Geography, 2), plain(Biology, 2),
		plain(Physics, 3), plain(Chemistry, 2), plain(Informatics, 1), plain(TechnicalDrawing, 1),
		plain(Labor, 1), plain(PhysicalEd, 3), plain(LifeSafety, 1),
	},
	10: append(append([]models.StandardSubject{}, seniorCore...),
		plain(Astronomy, 1), plain(Labor, 2), plain(PhysicalEd, 3), plain(LifeSafety, 1)),
	11: append(append([]models.StandardSubject{}, seniorCore...),
		plain(Labor, 2), plain(PhysicalEd, 3), plain(LifeSafety, 1)),
}

// StandardCurriculum returns a copy of the weekly plan for grade, or nil for unknown grades.
func StandardCurriculum(grade int) []models.StandardSubject {
	plan, ok := standardCurriculum[grade]
	if !ok {
		return nil
	}
	out := make([]models.StandardSubject, len(plan))
	copy(out, plan)
	return out
}

// TaughtByHomeTeacher reports whether the home-room teacher covers a standard subject.
// Only primary grades use home-room teachers, and never for specialist subjects.
func TaughtByHomeTeacher(grade int, subject models.StandardSubject) bool {
	return grade >= 1 && grade <= 4 && !subject.NeedsSpecialist
}
