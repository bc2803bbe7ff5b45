package math

func TransformCreate() *Transform {
	return TransformFromPositionRotationScale(NewVec3Zero(), NewQuatIdentity(), NewVec3One())
}

func TransformFromPosition(position Vec3) *Transform {
	return TransformFromPositionRotationScale(position, NewQuatIdentity(), NewVec3One())
}

func TransformFromPositionRotationScale(position Vec3, rotation Quaternion, scale Vec3) *Transform {
	t := &Transform{}
	t.SetPositionRotationScale(position, rotation, scale)
	t.Local = NewMat4Identity()
	t.Parent = nil
	return t
}

func (t *Transform) SetPosition(position Vec3) {
	t.Position = position
	t.IsDirty = true
}

func (t *Transform) Translate(translation Vec3) {
	t.Position = t.Position.Add(translation)
	t.IsDirty = true
}

func (t *Transform) SetRotation(rotation Quaternion) {
	t.Rotation = rotation
	t.IsDirty = true
}

// Rotate applies rotation after the current orientation.
func (t *Transform) Rotate(rotation Quaternion) {
	t.Rotation = rotation.Mul(t.Rotation).Normalize()
	t.IsDirty = true
}

func (t *Transform) SetScale(scale Vec3) {
	t.Scale = scale
	t.IsDirty = true
}

func (t *Transform) SetPositionRotationScale(position Vec3, rotation Quaternion, scale Vec3) {
	t.Position = position
	t.Rotation = rotation
	t.Scale = scale
	t.IsDirty = true
}

/**
 * @brief Returns the local matrix: scale, then rotation, then translation.
 * Recomputed only when the transform is dirty.
 */
func (t *Transform) GetLocal() Mat4 {
	if t != nil {
		if t.IsDirty {
			t.Local = Mat4Chain(
				NewMat4Scale(t.Scale),
				t.Rotation.ToMat4(),
				NewMat4Translation(t.Position),
			)
			t.IsDirty = false
		}
		return t.Local
	}
	return NewMat4Identity()
}

/**
 * @brief Returns the world matrix: the local matrix followed by the parent's
 * world matrix, if any.
 */
func (t *Transform) GetWorld() Mat4 {
	if t != nil {
		l := t.GetLocal()
		if t.Parent != nil {
			p := t.Parent.GetWorld()
			return l.Mul(p)
		}
		return l
	}
	return NewMat4Identity()
}
