package catalog

// Variant names recognized by queries that ship hinted statements.
const (
	VariantWithIndex  = "with_index"
	VariantNestedLoop = "nested_loop"
	VariantHash       = "hash"
	VariantMerge      = "merge"
)

// Hinted rewrites of query 4. The JOIN_ORDER hints steer the optimizer
// toward a specific join order; index hints pin the access path.

const artistAverageRatingsWithIndexSQL = `
SELECT
    a.artist_id,
    a.name,
    AVG(r.artist_rating) AS avg_artist_rating,
    AVG(r.overall_rating) AS avg_overall_rating,
    COUNT(r.review_id) AS total_reviews
FROM Artist a FORCE INDEX (PRIMARY)
JOIN Performance p FORCE INDEX (idx_performance_artist) ON a.artist_id = p.artist_id
JOIN Review r FORCE INDEX (idx_review_performance) ON p.performance_id = r.performance_id
WHERE a.artist_id = ?
GROUP BY a.artist_id, a.name`

const artistAverageRatingsNestedLoopSQL = `
SELECT /*+ JOIN_ORDER(a, p, r) */
    a.artist_id,
    a.name,
    AVG(r.artist_rating) AS avg_artist_rating,
    AVG(r.overall_rating) AS avg_overall_rating,
    COUNT(r.review_id) AS total_reviews
FROM Artist a
JOIN Performance p FORCE INDEX (idx_performance_artist) ON a.artist_id = p.artist_id
JOIN Review r FORCE INDEX (idx_review_performance) ON p.performance_id = r.performance_id
WHERE a.artist_id = ?
GROUP BY a.artist_id, a.name`

const artistAverageRatingsHashSQL = `
SELECT /*+ JOIN_ORDER(p, r, a) */
    a.artist_id,
    a.name,
    AVG(r.artist_rating) AS avg_artist_rating,
    AVG(r.overall_rating) AS avg_overall_rating,
    COUNT(r.review_id) AS total_reviews
FROM Performance p
JOIN Review r ON p.performance_id = r.performance_id
JOIN Artist a ON p.artist_id = a.artist_id
WHERE a.artist_id = ?
GROUP BY a.artist_id, a.name`

const artistAverageRatingsMergeSQL = `
SELECT /*+ JOIN_ORDER(r, p, a) */
    a.artist_id,
    a.name,
    AVG(r.artist_rating) AS avg_artist_rating,
    AVG(r.overall_rating) AS avg_overall_rating,
    COUNT(r.review_id) AS total_reviews
FROM Review r
JOIN Performance p ON r.performance_id = p.performance_id
JOIN Artist a ON p.artist_id = a.artist_id
WHERE a.artist_id = ?
GROUP BY a.artist_id, a.name`

// Hinted rewrites of query 6.

const visitorPerformancesRatingsWithIndexSQL = `
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
FROM Ticket t FORCE INDEX (idx_ticket_visitor)
JOIN Event e FORCE INDEX (PRIMARY) ON t.event_id = e.event_id
JOIN FestivalDay fd ON e.day_id = fd.day_id
JOIN Performance p ON e.event_id = p.event_id
LEFT JOIN Artist a ON p.artist_id = a.artist_id
LEFT JOIN Band b ON p.band_id = b.band_id
JOIN PerformanceType pt ON p.type_id = pt.type_id
LEFT JOIN Review r FORCE INDEX (idx_review_visitor) ON p.performance_id = r.performance_id AND r.visitor_id = t.visitor_id
WHERE t.visitor_id = ?
  AND t.is_active = FALSE
GROUP BY e.name, fd.festival_date, performer, pt.name
ORDER BY fd.festival_date DESC`

const visitorPerformancesRatingsNestedLoopSQL = `
SELECT /*+ JOIN_ORDER(t, e, fd, p, a, b, pt, r) */
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
FROM Ticket t FORCE INDEX (idx_ticket_visitor)
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

const visitorPerformancesRatingsHashSQL = `
SELECT /*+ JOIN_ORDER(p, e, fd, t, r, a, b, pt) */
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
FROM Performance p
JOIN Event e ON p.event_id = e.event_id
JOIN FestivalDay fd ON e.day_id = fd.day_id
JOIN Ticket t ON e.event_id = t.event_id
LEFT JOIN Review r ON p.performance_id = r.performance_id AND r.visitor_id = t.visitor_id
LEFT JOIN Artist a ON p.artist_id = a.artist_id
LEFT JOIN Band b ON p.band_id = b.band_id
JOIN PerformanceType pt ON p.type_id = pt.type_id
WHERE t.visitor_id = ?
  AND t.is_active = FALSE
GROUP BY e.name, fd.festival_date, performer, pt.name
ORDER BY fd.festival_date DESC`

const visitorPerformancesRatingsMergeSQL = `
SELECT /*+ JOIN_ORDER(r, p, e, fd, t, a, b, pt) */
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
FROM Review r
JOIN Performance p ON r.performance_id = p.performance_id
JOIN Event e ON p.event_id = e.event_id
JOIN FestivalDay fd ON e.day_id = fd.day_id
JOIN Ticket t ON e.event_id = t.event_id AND r.visitor_id = t.visitor_id
LEFT JOIN Artist a ON p.artist_id = a.artist_id
LEFT JOIN Band b ON p.band_id = b.band_id
JOIN PerformanceType pt ON p.type_id = pt.type_id
WHERE t.visitor_id = ?
  AND t.is_active = FALSE
GROUP BY e.name, fd.festival_date, performer, pt.name
ORDER BY fd.festival_date DESC`
