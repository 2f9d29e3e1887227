package catalog

import "github.com/TFMV/encore/pkg/models"

// Baseline statements of the festival analytics catalog. Placeholders are
// positional and match the Params declared on each spec in order.

const revenueByYearPaymentSQL = `
SELECT
    f.year,
    pm.name AS payment_method,
    SUM(t.price) AS total_revenue,
    COUNT(t.ticket_id) AS tickets_sold
FROM Ticket t
JOIN Event e ON t.event_id = e.event_id
JOIN FestivalDay fd ON e.day_id = fd.day_id
JOIN Festival f ON fd.festival_id = f.festival_id
JOIN PaymentMethod pm ON t.method_id = pm.method_id
GROUP BY f.year, pm.name
ORDER BY f.year DESC, total_revenue DESC`

const artistsByGenreParticipationSQL = `
SELECT
    a.artist_id,
    a.name,
    a.pseudonym,
    a.genre,
    a.subgenre,
    CASE
        WHEN EXISTS (
            SELECT 1
            FROM Performance p
            JOIN Event e ON p.event_id = e.event_id
            JOIN FestivalDay fd ON e.day_id = fd.day_id
            JOIN Festival f ON fd.festival_id = f.festival_id
            WHERE p.artist_id = a.artist_id AND f.year = ?
        ) THEN 'Yes'
        ELSE 'No'
    END AS participated
FROM Artist a
WHERE a.genre = ?
ORDER BY a.name`

const frequentWarmupArtistsSQL = `
SELECT
    a.artist_id,
    a.name,
    f.name AS festival_name,
    f.year,
    COUNT(*) AS warmup_count
FROM Performance p
JOIN Artist a ON p.artist_id = a.artist_id
JOIN Event e ON p.event_id = e.event_id
JOIN FestivalDay fd ON e.day_id = fd.day_id
JOIN Festival f ON fd.festival_id = f.festival_id
JOIN PerformanceType pt ON p.type_id = pt.type_id
WHERE pt.name = 'Warm Up'
GROUP BY a.artist_id, f.festival_id
HAVING COUNT(*) > 2
ORDER BY warmup_count DESC, f.year DESC`

const artistAverageRatingsSQL = `
SELECT
    a.artist_id,
    a.name,
    AVG(r.artist_rating) AS avg_artist_rating,
    AVG(r.overall_rating) AS avg_overall_rating,
    COUNT(r.review_id) AS total_reviews
FROM Artist a
JOIN Performance p ON a.artist_id = p.artist_id
JOIN Review r ON p.performance_id = r.performance_id
WHERE a.artist_id = ?
GROUP BY a.artist_id, a.name`

const youngArtistsParticipationSQL = `
SELECT
    a.artist_id,
    a.name,
    TIMESTAMPDIFF(YEAR, a.birthdate, CURDATE()) AS age,
    COUNT(DISTINCT f.festival_id) AS festival_count
FROM Artist a
JOIN Performance p ON a.artist_id = p.artist_id
JOIN Event e ON p.event_id = e.event_id
JOIN FestivalDay fd ON e.day_id = fd.day_id
JOIN Festival f ON fd.festival_id = f.festival_id
WHERE TIMESTAMPDIFF(YEAR, a.birthdate, CURDATE()) < 30
GROUP BY a.artist_id, a.name, a.birthdate
ORDER BY festival_count DESC, age ASC`

const visitorPerformancesRatingsSQL = `
SELECT
    e.name AS event_name,
    fd.festival_date,
    CASE
        WHEN p.artist_id IS NOT NULL THEN a.name
        WHEN p.band_id IS NOT NULL THEN b.name
        ELSE 'Unknown'
    END AS performer,
    pt.name AS performance_type,
    AVG(r.overall_rating) AS avg_rating,
    COUNT(r.review_id) AS review_count
FROM Ticket t
JOIN Event e ON t.event_id = e.event_id
JOIN FestivalDay fd ON e.day_id = fd.day_id
JOIN Performance p ON e.event_id = p.event_id
LEFT JOIN Artist a ON p.artist_id = a.artist_id
LEFT JOIN Band b ON p.band_id = b.band_id
JOIN PerformanceType pt ON p.type_id = pt.type_id
LEFT JOIN Review r ON p.performance_id = r.performance_id AND r.visitor_id = t.visitor_id
WHERE t.visitor_id = ?
  AND t.is_active = FALSE
GROUP BY e.name, fd.festival_date, performer, pt.name
ORDER BY fd.festival_date DESC`

const festivalLowestTechExperienceSQL = `
SELECT
    f.festival_id,
    f.name AS festival_name,
    f.year,
    AVG(el.level_id) AS avg_experience_level
FROM Festival f
JOIN FestivalDay fd ON f.festival_id = fd.festival_id
JOIN Event e ON fd.day_id = e.day_id
JOIN Staff_Assignment sa ON e.event_id = sa.event_id
JOIN Staff s ON sa.staff_id = s.staff_id
JOIN ExperienceLevel el ON s.level_id = el.level_id
JOIN StaffRole sr ON s.role_id = sr.role_id
WHERE sr.name = 'Technician'
GROUP BY f.festival_id, f.name, f.year
ORDER BY avg_experience_level ASC
LIMIT 1`

const unscheduledSupportStaffSQL = `
SELECT
    s.staff_id,
    s.name,
    s.age,
    el.name AS experience_level
FROM Staff s
JOIN ExperienceLevel el ON s.level_id = el.level_id
JOIN StaffRole sr ON s.role_id = sr.role_id
WHERE sr.name = 'Support'
  AND s.staff_id NOT IN (
      SELECT sa.staff_id
      FROM Staff_Assignment sa
      JOIN Event e ON sa.event_id = e.event_id
      JOIN FestivalDay fd ON e.day_id = fd.day_id
      WHERE fd.festival_date = ?
  )
ORDER BY s.name`

const visitorsSameAttendanceCountSQL = `
SELECT
    v.visitor_id,
    CONCAT(v.first_name, ' ', v.last_name) AS visitor_name,
    attendance.year,
    attendance.attendance_count,
    GROUP_CONCAT(DISTINCT f.name) AS festivals_attended
FROM Visitor v
JOIN (
    SELECT
        visitor_id,
        YEAR(fd.festival_date) AS year,
        COUNT(DISTINCT t.ticket_id) AS attendance_count
    FROM Ticket t
    JOIN Event e ON t.event_id = e.event_id
    JOIN FestivalDay fd ON e.day_id = fd.day_id
    WHERE t.is_active = FALSE
    GROUP BY visitor_id, year
    HAVING attendance_count > 3
) AS attendance ON v.visitor_id = attendance.visitor_id
JOIN (
    SELECT
        year,
        attendance_count
    FROM (
        SELECT
            YEAR(fd.festival_date) AS year,
            t.visitor_id,
            COUNT(DISTINCT t.ticket_id) AS attendance_count
        FROM Ticket t
        JOIN Event e ON t.event_id = e.event_id
        JOIN FestivalDay fd ON e.day_id = fd.day_id
        WHERE t.is_active = FALSE
        GROUP BY year, t.visitor_id
        HAVING attendance_count > 3
    ) AS visitor_counts
    GROUP BY year, attendance_count
    HAVING COUNT(*) > 1
) AS shared_counts
    ON attendance.year = shared_counts.year
    AND attendance.attendance_count = shared_counts.attendance_count
JOIN Ticket t ON v.visitor_id = t.visitor_id
JOIN Event e ON t.event_id = e.event_id
JOIN FestivalDay fd ON e.day_id = fd.day_id
JOIN Festival f ON fd.festival_id = f.festival_id
WHERE t.is_active = FALSE
  AND YEAR(fd.festival_date) = attendance.year
GROUP BY v.visitor_id, visitor_name, attendance.year, attendance.attendance_count
ORDER BY attendance.year DESC, attendance.attendance_count DESC`

const topGenrePairsSQL = `
WITH SplitGenres AS (
    SELECT
        p.performance_id,
        a.artist_id,
        a.name AS artist_name,
        CASE
            WHEN a.genre LIKE '%/%' THEN SUBSTRING_INDEX(a.genre, '/', 1)
            ELSE a.genre
        END AS genre1,
        CASE
            WHEN a.genre LIKE '%/%' THEN SUBSTRING_INDEX(a.genre, '/', -1)
            ELSE NULL
        END AS genre2
    FROM Performance p
    JOIN Artist a ON p.artist_id = a.artist_id
    WHERE a.genre LIKE '%/%'
),
GenrePairs AS (
    SELECT
        genre1,
        genre2,
        COUNT(DISTINCT artist_id) AS artist_count
    FROM SplitGenres
    WHERE genre2 IS NOT NULL
    GROUP BY genre1, genre2
)
SELECT
    genre1,
    genre2,
    artist_count
FROM GenrePairs
ORDER BY artist_count DESC, genre1, genre2
LIMIT 3`

const lessFrequentArtistsSQL = `
WITH ArtistParticipations AS (
    SELECT
        a.artist_id,
        a.name,
        COUNT(DISTINCT f.festival_id) AS festival_count
    FROM Artist a
    LEFT JOIN Performance p ON a.artist_id = p.artist_id
    LEFT JOIN Event e ON p.event_id = e.event_id
    LEFT JOIN FestivalDay fd ON e.day_id = fd.day_id
    LEFT JOIN Festival f ON fd.festival_id = f.festival_id
    GROUP BY a.artist_id, a.name
),
MaxParticipation AS (
    SELECT MAX(festival_count) AS max_count
    FROM ArtistParticipations
)
SELECT
    ap.artist_id,
    ap.name,
    ap.festival_count,
    mp.max_count AS top_artist_count,
    (mp.max_count - ap.festival_count) AS difference
FROM ArtistParticipations ap
CROSS JOIN MaxParticipation mp
WHERE ap.festival_count <= (mp.max_count - 5)
ORDER BY ap.festival_count DESC`

const festivalStaffByCategorySQL = `
SELECT
    fd.festival_date,
    f.name AS festival_name,
    sr.name AS staff_role,
    COUNT(DISTINCT sa.staff_id) AS assigned_staff,
    COUNT(DISTINCT t.ticket_id) AS tickets_sold,
    MAX(CASE
        WHEN sr.name = 'Security' THEN GREATEST(CEIL(s.capacity * 0.05), 1)
        WHEN sr.name = 'Support' THEN GREATEST(CEIL(s.capacity * 0.02), 1)
        ELSE 1
    END) AS max_staff_per_venue,
    ROUND(AVG(CASE
        WHEN sr.name = 'Security' THEN GREATEST(CEIL(s.capacity * 0.05), 1)
        WHEN sr.name = 'Support' THEN GREATEST(CEIL(s.capacity * 0.02), 1)
        ELSE 1
    END)) AS avg_staff_per_venue,
    COUNT(DISTINCT s.stage_id) AS operating_venues,
    SUM(CASE
        WHEN sr.name = 'Security' THEN GREATEST(CEIL(s.capacity * 0.05), 1)
        WHEN sr.name = 'Support' THEN GREATEST(CEIL(s.capacity * 0.02), 1)
        ELSE 1
    END) AS total_concurrent_staff,
    CASE
        WHEN MAX(CASE
            WHEN sr.name = 'Security' THEN GREATEST(CEIL(s.capacity * 0.05), 1)
            WHEN sr.name = 'Support' THEN GREATEST(CEIL(s.capacity * 0.02), 1)
            ELSE 1
        END) = 0 THEN 0
        ELSE ROUND(COUNT(DISTINCT sa.staff_id) / MAX(CASE
            WHEN sr.name = 'Security' THEN GREATEST(CEIL(s.capacity * 0.05), 1)
            WHEN sr.name = 'Support' THEN GREATEST(CEIL(s.capacity * 0.02), 1)
            ELSE 1
        END) * 100)
    END AS staffing_ratio
FROM Festival f
JOIN FestivalDay fd ON f.festival_id = fd.festival_id
JOIN Event e ON fd.day_id = e.day_id
JOIN Stage s ON e.stage_id = s.stage_id
LEFT JOIN Staff_Assignment sa ON e.event_id = sa.event_id
LEFT JOIN StaffRole sr ON sa.role_id = sr.role_id
LEFT JOIN Ticket t ON e.event_id = t.event_id
WHERE sr.name IS NOT NULL
GROUP BY fd.festival_date, f.name, sr.name
ORDER BY fd.festival_date DESC, sr.name`

const artistsMultipleContinentsSQL = `
SELECT
    a.artist_id,
    a.name,
    COUNT(DISTINCT l.continent) AS continent_count,
    GROUP_CONCAT(DISTINCT l.continent) AS continents
FROM Artist a
JOIN Performance p ON a.artist_id = p.artist_id
JOIN Event e ON p.event_id = e.event_id
JOIN FestivalDay fd ON e.day_id = fd.day_id
JOIN Festival f ON fd.festival_id = f.festival_id
JOIN Location l ON f.location_id = l.location_id
GROUP BY a.artist_id, a.name
HAVING COUNT(DISTINCT l.continent) >= 3
ORDER BY continent_count DESC, a.name`

const genresConsistentPerformancesSQL = `
WITH GenreYearCounts AS (
    SELECT
        a.genre,
        f.year,
        COUNT(DISTINCT p.performance_id) AS performance_count
    FROM Artist a
    JOIN Performance p ON a.artist_id = p.artist_id
    JOIN Event e ON p.event_id = e.event_id
    JOIN FestivalDay fd ON e.day_id = fd.day_id
    JOIN Festival f ON fd.festival_id = f.festival_id
    GROUP BY a.genre, f.year
    HAVING COUNT(DISTINCT p.performance_id) >= 3
)
SELECT
    g1.genre,
    g1.year AS year1,
    g2.year AS year2,
    g1.performance_count
FROM GenreYearCounts g1
JOIN GenreYearCounts g2 ON g1.genre = g2.genre
                        AND g1.performance_count = g2.performance_count
                        AND g2.year = g1.year + 1
ORDER BY g1.performance_count DESC, g1.genre`

const topVisitorsRatingsForArtistSQL = `
SELECT
    v.visitor_id,
    CONCAT(v.first_name, ' ', v.last_name) AS visitor_name,
    a.name AS artist_name,
    SUM(r.artist_rating + r.sound_rating + r.stage_rating + r.organization_rating + r.overall_rating) AS total_score,
    COUNT(r.review_id) AS review_count,
    AVG(r.overall_rating) AS avg_overall_rating
FROM Visitor v
JOIN Review r ON v.visitor_id = r.visitor_id
JOIN Performance p ON r.performance_id = p.performance_id
JOIN Artist a ON p.artist_id = a.artist_id
WHERE a.artist_id = ?
GROUP BY v.visitor_id, visitor_name, artist_name
ORDER BY total_score DESC
LIMIT 5`

var specs = []*models.QuerySpec{
	{
		Number:      1,
		ID:          "revenue_by_year_payment",
		Title:       "Festival Revenue by Year and Payment Method",
		Description: "Shows the total revenue from ticket sales by year and payment method.",
		SQL:         revenueByYearPaymentSQL,
	},
	{
		Number:      2,
		ID:          "artists_by_genre_participation",
		Title:       "Artists by Genre with Festival Participation",
		Description: "Lists artists belonging to a specific genre with indication of festival participation for a given year.",
		SQL:         artistsByGenreParticipationSQL,
		Params: []models.ParamSpec{
			{Name: "year", Type: models.ParamTypeInt, Description: "Festival year (e.g., 2024)"},
			{Name: "genre", Type: models.ParamTypeString, Description: "Music genre (e.g., Rock, Pop, Jazz)"},
		},
	},
	{
		Number:      3,
		ID:          "frequent_warmup_artists",
		Title:       "Artists with Multiple Warm-up Performances",
		Description: "Finds artists who performed as warm-up more than 2 times in the same festival.",
		SQL:         frequentWarmupArtistsSQL,
	},
	{
		Number:      4,
		ID:          "artist_average_ratings",
		Title:       "Artist Average Ratings",
		Description: "Shows the average ratings for an artist (performance and overall impression).",
		SQL:         artistAverageRatingsSQL,
		Params: []models.ParamSpec{
			{Name: "artist_id", Type: models.ParamTypeInt, Description: "Artist ID"},
		},
		Special:        true,
		JoinComparison: true,
		Variants: map[string]string{
			VariantWithIndex:  artistAverageRatingsWithIndexSQL,
			VariantNestedLoop: artistAverageRatingsNestedLoopSQL,
			VariantHash:       artistAverageRatingsHashSQL,
			VariantMerge:      artistAverageRatingsMergeSQL,
		},
	},
	{
		Number:      5,
		ID:          "young_artists_participation",
		Title:       "Young Artists with Most Festival Participations",
		Description: "Lists young artists (under 30) with the most festival participations.",
		SQL:         youngArtistsParticipationSQL,
	},
	{
		Number:      6,
		ID:          "visitor_performances_ratings",
		Title:       "Visitor Attended Performances and Ratings",
		Description: "Shows performances attended by a specific visitor and their average ratings.",
		SQL:         visitorPerformancesRatingsSQL,
		Params: []models.ParamSpec{
			{Name: "visitor_id", Type: models.ParamTypeInt, Description: "Visitor ID"},
		},
		Special:        true,
		JoinComparison: true,
		Variants: map[string]string{
			VariantWithIndex:  visitorPerformancesRatingsWithIndexSQL,
			VariantNestedLoop: visitorPerformancesRatingsNestedLoopSQL,
			VariantHash:       visitorPerformancesRatingsHashSQL,
			VariantMerge:      visitorPerformancesRatingsMergeSQL,
		},
	},
	{
		Number:      7,
		ID:          "festival_lowest_tech_experience",
		Title:       "Festival with Lowest Technical Staff Experience",
		Description: "Finds the festival with the lowest average experience level of technical staff.",
		SQL:         festivalLowestTechExperienceSQL,
	},
	{
		Number:      8,
		ID:          "unscheduled_support_staff",
		Title:       "Unscheduled Support Staff for a Date",
		Description: "Lists support staff not scheduled for a specific date.",
		SQL:         unscheduledSupportStaffSQL,
		Params: []models.ParamSpec{
			{Name: "date", Type: models.ParamTypeDate, Description: "Date (YYYY-MM-DD)"},
		},
	},
	{
		Number:      9,
		ID:          "visitors_same_attendance_count",
		Title:       "Visitors with Same Performance Attendance Count",
		Description: "Finds visitors who attended the same number of performances in a year (with more than 3 attendances).",
		SQL:         visitorsSameAttendanceCountSQL,
	},
	{
		Number:      10,
		ID:          "top_genre_pairs",
		Title:       "Top 3 Genre Pairs in Artists",
		Description: "Lists the top 3 pairs of genres that appear together in artists who performed at festivals.",
		SQL:         topGenrePairsSQL,
	},
	{
		Number:      11,
		ID:          "less_frequent_artists",
		Title:       "Artists with Fewer Performances Than Top Artist",
		Description: "Shows artists who performed at least 5 fewer times than the most active artist.",
		SQL:         lessFrequentArtistsSQL,
	},
	{
		Number:      12,
		ID:          "festival_staff_by_category",
		Title:       "Staff Required for Each Festival Day",
		Description: "Lists the staff required for each festival day by category.",
		SQL:         festivalStaffByCategorySQL,
	},
	{
		Number:      13,
		ID:          "artists_multiple_continents",
		Title:       "Artists Who Performed on Multiple Continents",
		Description: "Finds artists who performed in festivals on at least 3 different continents.",
		SQL:         artistsMultipleContinentsSQL,
	},
	{
		Number:      14,
		ID:          "genres_consistent_performances",
		Title:       "Genres with Consistent Performance Counts",
		Description: "Shows music genres with the same number of performances in consecutive years (at least 3 per year).",
		SQL:         genresConsistentPerformancesSQL,
	},
	{
		Number:      15,
		ID:          "top_visitors_ratings_for_artist",
		Title:       "Top Visitors by Ratings for an Artist",
		Description: "Lists the top 5 visitors with highest overall ratings for a specific artist.",
		SQL:         topVisitorsRatingsForArtistSQL,
		Params: []models.ParamSpec{
			{Name: "artist_id", Type: models.ParamTypeInt, Description: "Artist ID"},
		},
	},
}
